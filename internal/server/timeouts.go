// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts and graceful shutdown.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap body upload time (10 s)
//   • WriteTimeout      – cap total response time; must exceed the
//                         spreadsheet append timeout (20 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// Run serves until ctx is cancelled, then drains in-flight requests for up
// to ShutdownTimeout so a lead being appended is not cut off mid-write.
//

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful drain.
const ShutdownTimeout = 15 * time.Second

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run listens on srv.Addr and serves until ctx ends or the listener fails.
func Run(ctx context.Context, srv *http.Server, log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, ln, log)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.S()
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("http server shutting down", "grace", ShutdownTimeout)
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

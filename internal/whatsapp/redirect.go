// internal/whatsapp/redirect.go
//
// Messaging Redirect: opening the link.
//
// Context
// -------
// Redirect is the step that runs only after the intake endpoint confirmed a
// lead.  Opening the link is fire-and-forget: Open returns the URL at once
// and the Opener runs in its own goroutine.  A failure there is logged as a
// lead.RedirectError and never reported back as a failed submission, since
// the lead is already on the sheet.
//
// Openers
// -------
//   - BrowserOpener  asks the desktop to open the URL (xdg-open, open,
//     rundll32).
//   - PrintOpener    writes the URL to an io.Writer (CLI use).
//   - OpenerFunc     adapter for tests and custom transports.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/lead"
)

// Opener hands a URL to whatever presents it to the visitor.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// Redirect builds and opens chat links for recorded leads.
type Redirect struct {
	Number string
	Region string
	Opener Opener
	Log    *zap.SugaredLogger

	wg sync.WaitGroup
}

// NewRedirect returns a Redirect for number using opener.
func NewRedirect(number, region string, opener Opener, log *zap.SugaredLogger) *Redirect {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Redirect{Number: number, Region: region, Opener: opener, Log: log}
}

// Link returns the deep link for s without opening it.
func (r *Redirect) Link(s lead.Submission) string {
	return BuildDeepLink(r.Number, r.Region, s)
}

// Open starts opening the link for s and returns it immediately.  The
// opener runs detached from ctx cancellation so a finished request does
// not abort it.
func (r *Redirect) Open(ctx context.Context, s lead.Submission) string {
	link := r.Link(s)
	if r.Opener == nil {
		return link
	}

	bg := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Opener.Open(bg, link); err != nil {
			rerr := &lead.RedirectError{URL: link, Err: err}
			r.logger().Warnw("chat redirect failed", "err", rerr, "form_type", s.FormType)
		}
	}()
	return link
}

// Wait blocks until every pending Open has returned.
func (r *Redirect) Wait() { r.wg.Wait() }

func (r *Redirect) logger() *zap.SugaredLogger {
	if r.Log == nil {
		return zap.S()
	}
	return r.Log
}

// -----------------------------------------------------------------------------
// Openers
// -----------------------------------------------------------------------------

// BrowserOpener launches the platform URL handler.
type BrowserOpener struct{}

func (BrowserOpener) Open(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", cmd.Path, err)
	}
	return cmd.Wait()
}

// PrintOpener writes the URL on its own line.
type PrintOpener struct {
	W io.Writer
}

func (p PrintOpener) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintln(p.W, url)
	return err
}

// internal/routing/router.go
//
// Root HTTP router.
//
// Context
// -------
// One chi router serves the whole site surface that lives in Go:
//
//	POST /api/submit-form                 lead intake (rate limited)
//	GET  /api/properties[...]             catalogue JSON and chat links
//	GET  /forms/{formType}?property=<id>  lead form fragment
//	GET  /healthz, /readyz                liveness and sheet readiness
//	GET  /metrics                         Prometheus
//
// Middleware order matters.  Recoverer is outermost so a panic anywhere
// still produces a 500.  Request enrichment runs before the rate limiter
// because the limiter keys on the client IP it records.  That IP is the
// peer address unless the peer is listed in http.trusted_proxies.
// ForceHTTPS wraps the finished router so redirects skip all handler work.
package routing

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/propertysite/internal/config"
	"github.com/yanizio/propertysite/internal/form"
	"github.com/yanizio/propertysite/internal/intake"
	"github.com/yanizio/propertysite/internal/lead"
	"github.com/yanizio/propertysite/internal/middleware"
	"github.com/yanizio/propertysite/internal/property"
	"github.com/yanizio/propertysite/internal/requestinfo"
	"github.com/yanizio/propertysite/internal/sheets"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Config    *config.Config
	Recorder  sheets.Recorder
	Catalogue *property.Catalogue // nil uses the embedded catalogue
	Logger    *zap.SugaredLogger
	// Now overrides the intake clock in tests.
	Now func() time.Time
}

// New assembles the root handler.
func New(d Deps) http.Handler {
	cfg := d.Config
	log := d.Logger
	if log == nil {
		log = zap.S()
	}
	cat := d.Catalogue
	if cat == nil {
		cat = property.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	proxies, err := requestinfo.ParseProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		log.Errorw("trusted proxies ignored", "err", err)
		proxies = nil
	}
	r.Use(requestinfo.EnrichWith(proxies))
	r.Use(middleware.Security)

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst, 0)
	submitForm := intake.New(d.Recorder, intake.Options{BodyLimit: cfg.HTTP.BodyLimit, Now: d.Now})
	r.Method(http.MethodPost, "/api/submit-form", limiter.Handler(submitForm))

	props := &property.Handlers{
		Catalogue: cat,
		Number:    cfg.WhatsApp.Number,
		Region:    cfg.WhatsApp.Region,
	}
	r.Route("/api/properties", props.Routes)

	forms := &formHandler{catalogue: cat, log: log}
	r.Get("/forms/{formType}", forms.ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := d.Recorder.Ready(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("spreadsheet not configured"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, r)
}

// formHandler serves lead form fragments.
type formHandler struct {
	catalogue *property.Catalogue
	log       *zap.SugaredLogger
}

func (h *formHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ft, ok := lead.ParseFormType(strings.ToLower(chi.URLParam(r, "formType")))
	if !ok {
		http.NotFound(w, r)
		return
	}

	prefill := form.Values{}
	if id := r.URL.Query().Get("property"); id != "" {
		p, ok := h.catalogue.ByID(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		prefill[form.FieldMessage] = "I'm interested in " + p.Name
		if ft == lead.FormBooking {
			prefill[form.FieldPropertyCategory] = p.Category.Label()
		}
	}

	html, err := form.RenderForm(ft, form.RenderOptions{Prefill: prefill})
	if err != nil {
		h.log.Errorw("render form", "form_type", ft, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

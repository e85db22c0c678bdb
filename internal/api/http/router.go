package http

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authmw "github.com/mind-engage/income-predictor/internal/auth/middleware"
	"github.com/mind-engage/income-predictor/internal/logging"
)

type RouterOptions struct {
	CORSOrigins []string
	Timeout     time.Duration
	// Ready gates /readyz; nil means always ready.
	Ready *atomic.Bool
}

func NewRouter(d Deps, opts RouterOptions) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/", IndexHandler(d))
	r.Get("/index", IndexHandler(d))
	if d.Tokens != nil {
		r.With(authmw.RequireFormToken(d.Tokens, func(w http.ResponseWriter, _ *http.Request, err error) {
			d.Log.Info("form token rejected", zap.Error(err))
			msg := "The form has expired or is not valid, please reload it"
			if errors.Is(err, authmw.ErrMissingFormToken) {
				msg = "The submission has no form token, please submit it from the form page"
			}
			renderError(w, d.Log, http.StatusForbidden, ErrorCodeInvalidFormToken, msg)
		})).Post("/result", ResultHandler(d))
	} else {
		r.Post("/result", ResultHandler(d))
	}

	r.Route("/api", func(ar chi.Router) {
		ar.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
		ar.Post("/predict", PredictAPIHandler(d))
		ar.Get("/schema", SchemaHandler(d))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil && !opts.Ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})
	return r
}

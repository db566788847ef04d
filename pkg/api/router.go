package api

import (
	"net/http"
	"time"

	"oohsheets/pkg/metrics"
	"oohsheets/pkg/records"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the router around a records.Service.
type Options struct {
	APIKeys      []string
	CORSOrigins  []string
	MaxBodyBytes int64

	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// GetRouter initialises a new http router and applies all routes
func GetRouter(svc *records.Service, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	h := &handler{svc: svc, maxBodyBytes: opts.MaxBodyBytes, now: opts.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	return applyRoutes(r, h, opts)
}

func applyRoutes(r chi.Router, h *handler, opts Options) chi.Router {
	r.NotFound(h.routeNotFound)
	r.MethodNotAllowed(h.routeNotFound)

	r.Get("/api/health", h.health)
	r.Get("/api/exec", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(opts.APIKeys))

		r.Route("/api/dados", func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Delete("/", h.deleteGroup)
			r.Get("/{id:[0-9]+}", h.get)
			r.Put("/{id:[0-9]+}", h.update)
			r.Delete("/{id:[0-9]+}", h.delete)
		})
		r.Post("/api/exec", h.exec)
	})

	return r
}

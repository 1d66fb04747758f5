package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"flightplan-service/internal/domain/repository"
	"flightplan-service/pkg/logger"
	"flightplan-service/pkg/metrics"
)

type RouterOptions struct {
	Store   repository.FlightPlanStore
	Users   repository.UserService
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires the middleware chain, the unauthenticated probes and the
// authenticated /api/v1 routes.
func NewRouter(opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware(opts.Metrics, log))
	r.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	handler := NewFlightPlanHandler(opts.Store, log)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(NewBasicAuthMiddleware(opts.Users, log, opts.Metrics))
		handler.Routes(r)
	})

	return r
}

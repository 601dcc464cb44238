package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/primosamu/cannoli-dispatch/internal/http/handlers"
	obs "github.com/primosamu/cannoli-dispatch/internal/http/middleware"
	"github.com/primosamu/cannoli-dispatch/internal/http/middleware/ratelimit"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

const requestTimeout = 5 * time.Second

// Options are the optional parts of the router. Zero values switch the part off.
type Options struct {
	Logger    logx.Logger
	Metrics   *obs.HTTPMetrics
	RateLimit *ratelimit.Middleware
	Gatherer  prometheus.Gatherer
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, orders *handlers.OrderHandler, couriers *handlers.CourierHandler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(obs.Observability(opts.Logger, *opts.Metrics))
	}
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit.Handler())
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Create)
		r.Get("/", orders.List)
		r.Get("/board", orders.Board)
		r.Get("/{id}", orders.Get)
		r.Post("/{id}/status", orders.ChangeStatus)
		r.Post("/{id}/delivery", orders.AssignDelivery)
	})

	r.Route("/couriers", func(r chi.Router) {
		r.Post("/", couriers.Create)
		r.Get("/", couriers.List)
		r.Get("/{id}", couriers.GetByID)
		r.Patch("/{id}/availability", couriers.ToggleAvailability)
	})

	r.NotFound(http.HandlerFunc(h.NotFound))
	r.MethodNotAllowed(http.HandlerFunc(h.MethodNotAllowed))

	return r
}

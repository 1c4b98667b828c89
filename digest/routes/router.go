package routes

import (
	"digest/digest/controllers"
	"digest/digest/middlewares"
	"digest/digest/utils/validation"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Summaries *controllers.SummariesController
	Health    *controllers.HealthController
	Validator *validation.Validator
	Metrics   prometheus.Gatherer
}

// NewRouter mounts every route. Trailing slashes are optional.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Mount("/summaries", SummaryRoutes(h.Summaries, h.Validator))
	r.Mount("/health", HealthRoutes(h.Health))
	if h.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.Metrics, promhttp.HandlerOpts{}))
	}
	return r
}

package handler

import (
	"net/http"

	"github.com/fakhrymubarak/places-weather-search/internal/metrics"
	appMiddleware "github.com/fakhrymubarak/places-weather-search/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the search API. limiter guards both routes that reach the
// places service: search per location and select per place_id.
func NewRouter(h *SearchHandler, limiter *appMiddleware.RateLimiter, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetState)
			r.Delete("/", h.HandleDeleteSession)
			r.Get("/suggestions", h.HandleSuggestions)
			r.With(limiter.MiddlewareFor("place_id")).Post("/select", h.HandleSelect)
			r.With(limiter.Middleware).Post("/search", h.HandleSearch)
		})
	})

	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/richcards/leadrelay/internal/gateway"
	httpmiddleware "github.com/richcards/leadrelay/internal/http/middleware"
	"github.com/richcards/leadrelay/internal/httpapi"
	"github.com/richcards/leadrelay/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Intake             gateway.Handler
	Relay              gateway.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter throttles the two POST endpoints. Optional.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a Chi router serving both handlers for local runs and
// container deployments.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}
		if cfg.Intake != nil {
			contact := gateway.HTTPHandler(cfg.Intake)
			api.Post("/contact", contact.ServeHTTP)
			api.Options("/contact", contact.ServeHTTP)
		}
		if cfg.Relay != nil {
			events := gateway.HTTPHandler(cfg.Relay)
			api.Post("/events", events.ServeHTTP)
			api.Options("/events", events.ServeHTTP)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	gateway.WriteHTTP(w, httpapi.JSON(http.StatusOK, map[string]string{"status": "ok"}))
}

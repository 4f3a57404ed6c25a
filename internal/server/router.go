package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/helloca/ai-service/internal/config"
	"github.com/helloca/ai-service/internal/handler"
	"github.com/helloca/ai-service/internal/middleware"
)

const requestTimeout = 60 * time.Second

// NewRouter mounts the public routes. healthz may be nil, in which case
// /healthz is not served.
func NewRouter(corsCfg config.CORSConfig, h *handler.Handler, healthz http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer(h.RenderError))
	r.Use(cors.Handler(corsOptions(corsCfg)))
	r.Use(chimw.Timeout(requestTimeout))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/", h.Root)
	r.Post("/api/chat", h.Chat)
	if healthz != nil {
		r.Method(http.MethodGet, "/healthz", healthz)
	}

	return r
}

// corsOptions reflects the caller's Origin when the allow-list is the
// wildcard, since browsers refuse "*" on credentialed responses.
func corsOptions(cfg config.CORSConfig) cors.Options {
	opts := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = cfg.AllowedOrigins
	}
	return opts
}

// NewHTTPServer wraps h with the timeouts used in production.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

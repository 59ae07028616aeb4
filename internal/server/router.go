package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dsgallups/rust-atlanta/internal/handler"
	"github.com/dsgallups/rust-atlanta/internal/middleware"
)

// RouterConfig carries the handlers and middleware settings of the API.
type RouterConfig struct {
	Logger *slog.Logger

	Handler *handler.Handler
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
	Auth    *handler.AuthHandler
	Content *handler.ContentHandler

	Authentication middleware.AuthConfig
	LoginRateLimit middleware.RateLimitConfig

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// NewRouter wires routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.IsDevelopment))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins)))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", cfg.Handler.Hello)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Authentication))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.With(middleware.RateLimitLogin(cfg.LoginRateLimit)).Post("/login", cfg.Auth.Login)
			r.Get("/verify/{token}", cfg.Auth.Verify)
			r.With(middleware.RequireAuth).Get("/current", cfg.Auth.Current)
		})

		contentRoutes(r, "/projects", cfg.Content.ListProjects, cfg.Content.CreateProject,
			cfg.Content.GetProject, cfg.Content.UpdateProject, cfg.Content.DeleteProject)
		contentRoutes(r, "/events", cfg.Content.ListEvents, cfg.Content.CreateEvent,
			cfg.Content.GetEvent, cfg.Content.UpdateEvent, cfg.Content.DeleteEvent)
		contentRoutes(r, "/news", cfg.Content.ListNews, cfg.Content.CreateNews,
			cfg.Content.GetNews, cfg.Content.UpdateNews, cfg.Content.DeleteNews)
	})

	r.NotFound(cfg.Handler.NotFound)
	r.MethodNotAllowed(cfg.Handler.MethodNotAllowed)

	return r
}

// contentRoutes mounts a public read API and an authenticated write API.
func contentRoutes(r chi.Router, prefix string, list, create, get, update, remove http.HandlerFunc) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", list)
		r.Get("/{id}", get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", create)
			r.Patch("/{id}", update)
			r.Delete("/{id}", remove)
		})
	})
}

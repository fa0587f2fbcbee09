package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/wikishell/internal/pageservice"
	"github.com/starford/wikishell/internal/render"
)

// RouterConfig carries everything the listen-mode router mounts.
type RouterConfig struct {
	Service  *pageservice.Service
	Renderer *render.Renderer
	WikiName string
	WikiRoot string
	Logger   *slog.Logger

	// AuthEnabled controls whether Bearer token auth is enforced on /api.
	AuthEnabled bool
	Token       string

	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// Metrics, if non-nil, is mounted at GET /metrics.
	Metrics http.Handler
}

// NewRouter creates the engine's root router: rendered pages, health
// checks, metrics, attachments and the authenticated /api group.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	views := NewViewHandler(cfg.Service, cfg.Renderer, cfg.WikiName, logger)
	fh := NewFileHandler(cfg.WikiRoot, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Get("/", views.Home)
	r.Get("/pages", views.Index)
	r.Get("/pages/*", views.Page)
	r.Get("/files/{filename}", fh.ServeFile)

	r.Mount("/api", newAPIRouter(cfg, logger, fh))
	return r
}

func newAPIRouter(cfg RouterConfig, logger *slog.Logger, fh *FileHandler) chi.Router {
	h := NewHandler(cfg.Service, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	r.Get("/pages", h.ListPages)
	r.Post("/pages", h.CreatePage)
	r.Get("/pages/*", h.GetPage)
	r.Put("/pages/*", h.UpdatePage)
	r.Delete("/pages/*", h.DeletePage)
	r.Post("/move", h.MovePage)

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	r.Post("/files", fh.Upload)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

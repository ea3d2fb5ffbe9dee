package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lessonforge/lessonforge/internal/api"
	"github.com/lessonforge/lessonforge/internal/api/handlers"
	"github.com/lessonforge/lessonforge/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	TopicHandler    *handlers.TopicHandler
	PromptHandler   *handlers.PromptHandler
	SearchHandler   *handlers.SearchHandler
	Logger          *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Post("/{id}/process", cfg.DocumentHandler.Process)
			r.Post("/{id}/reset", cfg.DocumentHandler.Reset)
		})

		r.Route("/courses/{id}/topics", func(r chi.Router) {
			r.Get("/", cfg.TopicHandler.List)
			r.Post("/", cfg.TopicHandler.Create)
			r.Post("/generate", cfg.TopicHandler.Generate)
		})

		r.Route("/topics/{id}", func(r chi.Router) {
			r.Delete("/", cfg.TopicHandler.Delete)
			r.Post("/selection", cfg.TopicHandler.SetSelection)
			r.Post("/prompt", cfg.PromptHandler.Build)
			r.Post("/lesson", cfg.PromptHandler.Execute)
		})

		r.Post("/search", cfg.SearchHandler.Search)
	})

	return r
}

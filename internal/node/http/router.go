package http

import (
	"net/http"

	"github.com/JulianoL13/app-node-engine/internal/common/logs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, logger logs.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(RequestLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", h.GetNodes)
		r.Get("/random", h.GetRandomNode)
		r.Get("/export", h.ExportNodes)
	})

	r.Post("/decode", h.Decode)
	r.Post("/convert", h.Convert)

	return r
}

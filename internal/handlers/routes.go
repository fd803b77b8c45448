package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes registers the web interface on a new router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/", h.HandleIndex)
	r.Head("/", h.HandleHead)
	r.Get("/healthcheck", h.HandleHealthcheck)
	r.Post("/convert", h.HandleConvert)

	return r
}

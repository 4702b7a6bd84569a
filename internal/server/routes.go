// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init wires the routes. The /api/config group mirrors the resolver
// operations; everything outside /api falls through to the static frontend
// when a directory is configured.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Get("/config", h.getConfig)
		r.Put("/config", h.updateConfig)
		r.Post("/config/reset", h.resetConfig)
		r.Get("/config/export", h.exportConfig)
		r.Post("/config/import", h.importConfig)
		r.Get("/health", h.health)
	})

	if h.staticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(h.staticDir)))
	}

	return router
}

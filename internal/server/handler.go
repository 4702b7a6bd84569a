// SPDX-License-Identifier: Apache-2.0

// Package server exposes the resolved configuration to the browser frontend
// over HTTP and serves the frontend's static files.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
	"github.com/projeval/evalctl/internal/probe"
)

// ConnectionChecker is the probe dependency of the health endpoint.
type ConnectionChecker interface {
	Check(ctx context.Context) probe.Result
}

// Handler carries the dependencies of all HTTP endpoints.
type Handler struct {
	resolver  *config.Resolver
	checker   ConnectionChecker
	staticDir string

	logger *logger.Logger
}

// NewHandler constructs the HTTP handler set. staticDir may be empty to
// disable static file serving.
func NewHandler(resolver *config.Resolver, checker ConnectionChecker, staticDir string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}

	log.Info().Msg("http handler created")
	return &Handler{
		resolver:  resolver,
		checker:   checker,
		staticDir: staticDir,
		logger:    log,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromRequest(r).Warn().Err(err).Msg("encoding response")
	}
}

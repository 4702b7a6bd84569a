// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/projeval/evalctl/internal/logger"
)

// Server wraps the standard http.Server with the application's lifecycle
// conventions.
type Server struct {
	server *http.Server
	logger *logger.Logger
}

// NewServer binds handler to address.
func NewServer(address string, handler http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	return &Server{
		server: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Run blocks serving requests until Shutdown or a listener error.
func (s *Server) Run() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("http server listening")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("http server shutdown")
	}
}

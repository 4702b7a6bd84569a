// SPDX-License-Identifier: Apache-2.0

// Package probe implements the backend connectivity check: a single bounded
// idempotent read against the projects listing of the resolved API base.
package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
)

// Result is the tri-state outcome of a connectivity check. A transport
// failure leaves Status at zero, which is distinct from any HTTP response.
type Result struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Prober issues connectivity checks against the backend the resolver points
// at. Exactly one attempt per check, no retries, no backoff.
type Prober struct {
	resolver *config.Resolver
	client   *resty.Client
	logger   *logger.Logger
}

// New constructs a Prober bound to resolver.
func New(resolver *config.Resolver, log *logger.Logger) *Prober {
	if log == nil {
		log = logger.Nop()
	}

	return &Prober{
		resolver: resolver,
		client:   resty.New(),
		logger:   log,
	}
}

// Check performs one GET {apiBase}/projects with the configured timeout.
// Every outcome is a defined Result; Check never returns an error. The
// timeout firing is reported the same way as any other transport failure.
func (p *Prober) Check(ctx context.Context) Result {
	settings := p.resolver.Snapshot()
	timeout := time.Duration(settings.APITimeout) * time.Millisecond
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := p.resolver.APIURL("/projects")
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.NewString()).
		Get(target)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", target).Msg("probe transport failure")
		return Result{Success: false, Status: 0, Message: err.Error()}
	}

	status := resp.StatusCode()
	result := Result{
		Success: resp.IsSuccess(),
		Status:  status,
		Message: http.StatusText(status),
	}

	p.logger.Debug().
		Str("url", target).
		Int("status", status).
		Bool("success", result.Success).
		Msg("probe completed")

	return result
}

// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envSettings maps EVAL_-prefixed environment variables onto a partial
// settings patch. Pointer fields stay nil for unset variables so the layer
// only claims options that were actually supplied.
type envSettings struct {
	APIBase             *string `env:"API_BASE"`
	APITimeout          *int    `env:"API_TIMEOUT"`
	DebugMode           *bool   `env:"DEBUG_MODE"`
	EnableMock          *bool   `env:"ENABLE_MOCK"`
	AutoRefreshInterval *int    `env:"AUTO_REFRESH_INTERVAL"`

	Pagination struct {
		PageSize    *int `env:"PAGE_SIZE"`
		MaxPageSize *int `env:"MAX_PAGE_SIZE"`
	} `envPrefix:"PAGINATION_"`
}

// layerFromEnv reads the environment layer. It sits between the defaults
// and the persisted record: useful for operators scripting evalctl, while
// user overrides saved from the UI still win.
func layerFromEnv() (*Layer, error) {
	var parsed envSettings
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: "EVAL_"}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	return &Layer{
		APIBase:             parsed.APIBase,
		APITimeout:          parsed.APITimeout,
		DebugMode:           parsed.DebugMode,
		EnableMock:          parsed.EnableMock,
		AutoRefreshInterval: parsed.AutoRefreshInterval,
		Pagination: PaginationLayer{
			PageSize:    parsed.Pagination.PageSize,
			MaxPageSize: parsed.Pagination.MaxPageSize,
		},
	}, nil
}

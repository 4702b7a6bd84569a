// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
)

// Layer is one configuration source expressed as a patch: a nil field means
// the source did not supply that option. Layers compose first-wins, so the
// query layer is merged before the persisted record, which is merged before
// the environment and the defaults.
type Layer struct {
	APIBase             *string
	APITimeout          *int
	DebugMode           *bool
	EnableMock          *bool
	Pagination          PaginationLayer
	AutoRefreshInterval *int

	// Extra carries unrecognized top-level keys of the source.
	Extra map[string]any
}

// PaginationLayer mirrors Pagination with optional fields.
type PaginationLayer struct {
	PageSize    *int
	MaxPageSize *int
}

// fromDefaults returns a Layer with every recognized option set from
// [DefaultSettings]. Merging it last guarantees the composition is total.
func fromDefaults() *Layer {
	d := DefaultSettings()
	return &Layer{
		APIBase:             &d.APIBase,
		APITimeout:          &d.APITimeout,
		DebugMode:           &d.DebugMode,
		EnableMock:          &d.EnableMock,
		Pagination:          PaginationLayer{PageSize: &d.Pagination.PageSize, MaxPageSize: &d.Pagination.MaxPageSize},
		AutoRefreshInterval: &d.AutoRefreshInterval,
	}
}

// applyTo copies every supplied option onto s. Extra keys overwrite
// whatever s held under the same name.
func (l *Layer) applyTo(s *Settings) {
	if l.APIBase != nil {
		s.APIBase = *l.APIBase
	}
	if l.APITimeout != nil {
		s.APITimeout = *l.APITimeout
	}
	if l.DebugMode != nil {
		s.DebugMode = *l.DebugMode
	}
	if l.EnableMock != nil {
		s.EnableMock = *l.EnableMock
	}
	if l.Pagination.PageSize != nil {
		s.Pagination.PageSize = *l.Pagination.PageSize
	}
	if l.Pagination.MaxPageSize != nil {
		s.Pagination.MaxPageSize = *l.Pagination.MaxPageSize
	}
	if l.AutoRefreshInterval != nil {
		s.AutoRefreshInterval = *l.AutoRefreshInterval
	}

	for k, v := range l.Extra {
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[k] = v
	}
}

// parseLayerJSON decodes a JSON object into a Layer. Recognized keys whose
// values cannot be coerced to the schema type are skipped rather than
// failing the parse; only malformed JSON or a non-object document is an
// error.
func parseLayerJSON(data []byte) (*Layer, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode settings object: %w", err)
	}
	if raw == nil {
		return &Layer{}, nil
	}

	layer := &Layer{}
	for key, value := range raw {
		switch key {
		case "apiBase":
			if v, ok := coerceString(value); ok {
				layer.APIBase = &v
			}
		case "apiTimeout":
			if v, ok := coerceInt(value); ok {
				layer.APITimeout = &v
			}
		case "debugMode":
			if v, ok := coerceBool(value); ok {
				layer.DebugMode = &v
			}
		case "enableMock":
			if v, ok := coerceBool(value); ok {
				layer.EnableMock = &v
			}
		case "pagination":
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := coerceInt(nested["pageSize"]); ok {
				layer.Pagination.PageSize = &v
			}
			if v, ok := coerceInt(nested["maxPageSize"]); ok {
				layer.Pagination.MaxPageSize = &v
			}
		case "autoRefreshInterval":
			if v, ok := coerceInt(value); ok {
				layer.AutoRefreshInterval = &v
			}
		default:
			if layer.Extra == nil {
				layer.Extra = make(map[string]any)
			}
			layer.Extra[key] = value
		}
	}

	return layer, nil
}

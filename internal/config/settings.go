// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"maps"
	"strconv"
)

// SchemaVersion is the version string written into every persisted record
// and export envelope. A stored record whose version differs is discarded
// in full and the session falls back to the remaining layers.
const SchemaVersion = "1.0.0"

// Recognized option keys. Nested pagination options use dotted names.
const (
	KeyAPIBase             = "apiBase"
	KeyAPITimeout          = "apiTimeout"
	KeyDebugMode           = "debugMode"
	KeyEnableMock          = "enableMock"
	KeyPageSize            = "pagination.pageSize"
	KeyMaxPageSize         = "pagination.maxPageSize"
	KeyAutoRefreshInterval = "autoRefreshInterval"
)

// Pagination groups the page-size options of the document list views.
type Pagination struct {
	// PageSize is the default number of items per page.
	PageSize int `json:"pageSize"`

	// MaxPageSize is the upper bound a caller may request.
	MaxPageSize int `json:"maxPageSize"`
}

// Settings is the effective configuration of a session.
//
// The named fields form the recognized schema. Extra carries top-level keys
// outside the schema unchanged; the resolver accepts and stores them
// without validation, which keeps the contract permissive for forward
// compatibility with newer frontends.
type Settings struct {
	// APIBase is the base URL prefixed to all API paths. Never empty once
	// the resolver has loaded: when no source supplies it, it is filled by
	// hostname-based detection.
	APIBase string

	// APITimeout is the request timeout ceiling in milliseconds.
	APITimeout int

	// DebugMode enables verbose diagnostic output.
	DebugMode bool

	// EnableMock toggles use of simulated responses. Reserved: no mock
	// behavior is currently wired to it.
	EnableMock bool

	// Pagination holds the page-size options.
	Pagination Pagination

	// AutoRefreshInterval is the background refresh period in milliseconds;
	// zero disables refreshing.
	AutoRefreshInterval int

	// Extra holds unrecognized top-level keys, passed through unchanged.
	Extra map[string]any
}

// DefaultSettings returns the hard-coded bottom layer of the composition.
// APIBase is intentionally empty here; it is resolved lazily, either from a
// higher layer or by detection.
func DefaultSettings() Settings {
	return Settings{
		APIBase:             "",
		APITimeout:          30000,
		DebugMode:           false,
		EnableMock:          false,
		Pagination:          Pagination{PageSize: 20, MaxPageSize: 100},
		AutoRefreshInterval: 0,
	}
}

// Clone returns a defensive copy. Mutating the copy, including its Extra
// map, never affects the original.
func (s Settings) Clone() Settings {
	out := s
	if s.Extra != nil {
		out.Extra = maps.Clone(s.Extra)
	}
	return out
}

// Value returns the option stored under key, or (nil, false) when neither
// the schema nor Extra holds it.
func (s Settings) Value(key string) (any, bool) {
	switch key {
	case KeyAPIBase:
		return s.APIBase, true
	case KeyAPITimeout:
		return s.APITimeout, true
	case KeyDebugMode:
		return s.DebugMode, true
	case KeyEnableMock:
		return s.EnableMock, true
	case KeyPageSize:
		return s.Pagination.PageSize, true
	case KeyMaxPageSize:
		return s.Pagination.MaxPageSize, true
	case KeyAutoRefreshInterval:
		return s.AutoRefreshInterval, true
	}

	v, ok := s.Extra[key]
	return v, ok
}

// setValue stores value under key, coercing to the schema type for
// recognized keys. Unrecognized keys land in Extra as-is. Returns false
// when a recognized key is given a value that cannot be coerced; the field
// is then left unchanged.
func (s *Settings) setValue(key string, value any) bool {
	switch key {
	case KeyAPIBase:
		v, ok := coerceString(value)
		if ok {
			s.APIBase = v
		}
		return ok
	case KeyAPITimeout:
		v, ok := coerceInt(value)
		if ok {
			s.APITimeout = v
		}
		return ok
	case KeyDebugMode:
		v, ok := coerceBool(value)
		if ok {
			s.DebugMode = v
		}
		return ok
	case KeyEnableMock:
		v, ok := coerceBool(value)
		if ok {
			s.EnableMock = v
		}
		return ok
	case KeyPageSize:
		v, ok := coerceInt(value)
		if ok {
			s.Pagination.PageSize = v
		}
		return ok
	case KeyMaxPageSize:
		v, ok := coerceInt(value)
		if ok {
			s.Pagination.MaxPageSize = v
		}
		return ok
	case KeyAutoRefreshInterval:
		v, ok := coerceInt(value)
		if ok {
			s.AutoRefreshInterval = v
		}
		return ok
	}

	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[key] = value
	return true
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return b == "true", true
	default:
		return false, false
	}
}

// MarshalJSON emits the recognized schema under its canonical key names
// with Extra keys inlined at the top level.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6+len(s.Extra))
	for k, v := range s.Extra {
		out[k] = v
	}
	out["apiBase"] = s.APIBase
	out["apiTimeout"] = s.APITimeout
	out["debugMode"] = s.DebugMode
	out["enableMock"] = s.EnableMock
	out["pagination"] = map[string]any{
		"pageSize":    s.Pagination.PageSize,
		"maxPageSize": s.Pagination.MaxPageSize,
	}
	out["autoRefreshInterval"] = s.AutoRefreshInterval

	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: recognized keys fill the
// schema fields, everything else lands in Extra. Keys absent from the input
// leave the corresponding field at its current value, so decoding on top of
// DefaultSettings yields a fully populated Settings.
func (s *Settings) UnmarshalJSON(data []byte) error {
	layer, err := parseLayerJSON(data)
	if err != nil {
		return err
	}

	layer.applyTo(s)
	return nil
}

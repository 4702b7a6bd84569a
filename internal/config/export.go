// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// exportEnvelope is the transport shape produced by Export and accepted by
// Import. Extra fields in an imported document are ignored.
type exportEnvelope struct {
	Version    string          `json:"version"`
	Config     json.RawMessage `json:"config"`
	ExportedAt int64           `json:"exportedAt"`
}

// Export serializes the current settings as a versioned JSON envelope
// {version, config, exportedAt} with an epoch-millisecond timestamp.
func (r *Resolver) Export() (string, error) {
	snapshot := r.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encoding settings for export: %w", err)
	}

	envelope := exportEnvelope{
		Version:    SchemaVersion,
		Config:     data,
		ExportedAt: time.Now().UnixMilli(),
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("encoding export envelope: %w", err)
	}

	return string(out), nil
}

// Import parses an export envelope and replaces the live settings with the
// defaults merged with the imported config (imported values win), then
// persists and notifies observers.
//
// An unparsable document or one lacking a config field returns an error and
// leaves the live settings untouched; there is no partial apply.
func (r *Resolver) Import(ctx context.Context, serialized string) error {
	var envelope exportEnvelope
	if err := json.Unmarshal([]byte(serialized), &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if len(envelope.Config) == 0 || string(envelope.Config) == "null" {
		return fmt.Errorf("%w: missing config field", ErrInvalidImport)
	}

	layer, err := parseLayerJSON(envelope.Config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	settings := DefaultSettings()
	layer.applyTo(&settings)
	if settings.APIBase == "" {
		settings.APIBase = DetectAPIBase(r.location)
	}

	r.mu.Lock()
	r.settings = settings
	r.mu.Unlock()

	r.persist(ctx)
	r.notify()
	return nil
}

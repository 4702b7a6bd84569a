// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"net/url"

	"dario.cat/mergo"

	"github.com/projeval/evalctl/internal/logger"
)

// layerBuilder accumulates configuration layers in precedence order (first
// appended wins) and composes them into one Settings value.
//
// Unlike a config loader that refuses to start on bad input, the builder is
// total: a source that cannot be read is logged and skipped, so resolution
// always succeeds with the remaining layers.
type layerBuilder struct {
	layers []*Layer
	logger *logger.Logger
}

func newLayerBuilder(log *logger.Logger) *layerBuilder {
	return &layerBuilder{
		layers: make([]*Layer, 0, 4),
		logger: log,
	}
}

func (b *layerBuilder) build() Settings {
	// WithoutDereference keeps a pointer field claimed once set, so an
	// explicit false/0 from a higher layer is not mistaken for "absent"
	// and overwritten by a lower layer.
	composed := &Layer{}
	for _, layer := range b.layers {
		if err := mergo.Merge(composed, layer, mergo.WithoutDereference); err != nil {
			b.logger.Warn().Err(err).Msg("merging configuration layer")
		}
	}

	settings := Settings{}
	composed.applyTo(&settings)
	return settings
}

// withQuery appends the transient layer read from the hosting page's query
// parameters. A nil URL contributes nothing.
func (b *layerBuilder) withQuery(u *url.URL) *layerBuilder {
	if u == nil {
		return b
	}

	b.layers = append(b.layers, layerFromQuery(u.Query()))
	return b
}

// withPersisted appends the stored record layer. A missing record, an
// unreadable store, a corrupt payload, or a schema-version mismatch all
// degrade to "no layer".
func (b *layerBuilder) withPersisted(ctx context.Context, store RecordStore) *layerBuilder {
	if store == nil {
		return b
	}

	record, err := store.Load(ctx)
	if err != nil {
		b.logger.Warn().Err(err).Msg("reading persisted settings, falling back")
		return b
	}
	if record == nil {
		return b
	}
	if record.Version != SchemaVersion {
		b.logger.Warn().
			Str("stored", record.Version).
			Str("running", SchemaVersion).
			Msg("persisted settings version mismatch, discarding record")
		return b
	}

	layer, err := parseLayerJSON(record.Data)
	if err != nil {
		b.logger.Warn().Err(err).Msg("corrupt persisted settings, falling back")
		return b
	}

	b.layers = append(b.layers, layer)
	return b
}

// withEnv appends the layer read from EVAL_-prefixed environment variables.
func (b *layerBuilder) withEnv() *layerBuilder {
	layer, err := layerFromEnv()
	if err != nil {
		b.logger.Warn().Err(err).Msg("reading environment settings, skipping layer")
		return b
	}

	b.layers = append(b.layers, layer)
	return b
}

// withDefaults appends the bottom layer. Always last.
func (b *layerBuilder) withDefaults() *layerBuilder {
	b.layers = append(b.layers, fromDefaults())
	return b
}

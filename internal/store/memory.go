// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/projeval/evalctl/internal/config"
)

// Memory is an in-process RecordStore. Used for tests and for DSNs that
// request no on-disk state.
type Memory struct {
	mu     sync.RWMutex
	record *config.Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements config.RecordStore.
func (m *Memory) Load(context.Context) (*config.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.record == nil {
		return nil, nil
	}
	clone := *m.record
	clone.Data = bytes.Clone(m.record.Data)
	return &clone, nil
}

// Save implements config.RecordStore.
func (m *Memory) Save(_ context.Context, record *config.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	clone.Data = bytes.Clone(record.Data)
	m.record = &clone
	return nil
}

// Clear implements config.RecordStore.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record = nil
	return nil
}

// Close implements io.Closer for symmetry with the SQLite store.
func (m *Memory) Close() error {
	return nil
}

// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projeval/evalctl/internal/logger"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// stubStore is a RecordStore backed by a single in-memory record.
type stubStore struct {
	record  *Record
	loadErr error
	saveErr error
	saved   []*Record
}

func (s *stubStore) Load(context.Context) (*Record, error) {
	return s.record, s.loadErr
}

func (s *stubStore) Save(_ context.Context, record *Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = record
	s.saved = append(s.saved, record)
	return nil
}

func (s *stubStore) Clear(context.Context) error {
	s.record = nil
	return nil
}

func storedRecord(t *testing.T, version string, settings map[string]any) *Record {
	t.Helper()
	data, err := json.Marshal(settings)
	require.NoError(t, err)
	return &Record{Version: version, Data: data, Timestamp: 1}
}

func pageURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// ── layering order ────────────────────────────────────────────────────────────

// TestBuild_DefaultsOnly verifies that with no other source the resolved
// configuration equals the defaults.
func TestBuild_DefaultsOnly(t *testing.T) {
	settings := newLayerBuilder(logger.Nop()).withDefaults().build()
	assert.Equal(t, DefaultSettings(), settings)
}

// TestBuild_PersistedOverridesDefaults verifies layer precedence between
// the stored record and the defaults.
func TestBuild_PersistedOverridesDefaults(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"apiTimeout": 15000})}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, 15000, settings.APITimeout)
	assert.Equal(t, 20, settings.Pagination.PageSize)
}

// TestBuild_QueryOverridesPersisted verifies that the URL layer wins over
// the stored record for the same key.
func TestBuild_QueryOverridesPersisted(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{
		"apiBase":   "http://stored:5000/api",
		"debugMode": false,
	})}
	u := pageURL(t, "http://localhost:8100/project/list.html?api_base=http://query:5000/api&debug=true")

	settings := newLayerBuilder(logger.Nop()).
		withQuery(u).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, "http://query:5000/api", settings.APIBase)
	assert.True(t, settings.DebugMode)
}

// TestBuild_MergesPerKey verifies that overrides are keyed merges: a higher
// layer supplying one key does not drop keys set by lower layers.
func TestBuild_MergesPerKey(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"apiTimeout": 15000})}
	u := pageURL(t, "http://localhost:8100/index.html?debug=true")

	settings := newLayerBuilder(logger.Nop()).
		withQuery(u).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, 15000, settings.APITimeout)
	assert.True(t, settings.DebugMode)
	assert.Equal(t, 100, settings.Pagination.MaxPageSize)
}

// TestBuild_QueryFalseOverridesPersistedTrue verifies that an explicit
// false supplied by the URL layer wins over a persisted true; a layer that
// claims a key wins even when its value is the zero value.
func TestBuild_QueryFalseOverridesPersistedTrue(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"debugMode": true})}
	u := pageURL(t, "http://localhost:8100/index.html?debug=false")

	settings := newLayerBuilder(logger.Nop()).
		withQuery(u).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.False(t, settings.DebugMode)
}

// TestBuild_PersistedZeroOverridesEnv verifies that a persisted explicit
// zero wins over a non-zero environment value.
func TestBuild_PersistedZeroOverridesEnv(t *testing.T) {
	t.Setenv("EVAL_AUTO_REFRESH_INTERVAL", "9000")
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"autoRefreshInterval": 0})}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withEnv().
		withDefaults().
		build()

	assert.Zero(t, settings.AutoRefreshInterval)
}

// TestBuild_EmptyQueryAPIBaseOverridesPersisted verifies the same rule for
// strings: an explicit empty api_base claims the key away from the stored
// record (detection then refills it at load time).
func TestBuild_EmptyQueryAPIBaseOverridesPersisted(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"apiBase": "http://stored:5000/api"})}
	u := pageURL(t, "http://localhost:8100/index.html?api_base=")

	settings := newLayerBuilder(logger.Nop()).
		withQuery(u).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Empty(t, settings.APIBase)
}

// ── version gating ────────────────────────────────────────────────────────────

// TestBuild_VersionMismatchDiscardsRecord verifies that a record with a
// stale version is discarded in full.
func TestBuild_VersionMismatchDiscardsRecord(t *testing.T) {
	store := &stubStore{record: storedRecord(t, "0.0.1", map[string]any{
		"apiTimeout": 15000,
		"debugMode":  true,
	})}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, DefaultSettings(), settings)
}

// ── degraded sources ──────────────────────────────────────────────────────────

// TestBuild_CorruptRecordFallsBack verifies that unparsable stored data
// degrades silently to the remaining layers.
func TestBuild_CorruptRecordFallsBack(t *testing.T) {
	store := &stubStore{record: &Record{Version: SchemaVersion, Data: []byte("{not json")}}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, DefaultSettings(), settings)
}

// TestBuild_StoreErrorFallsBack verifies that an unreadable store degrades
// silently to the remaining layers.
func TestBuild_StoreErrorFallsBack(t *testing.T) {
	store := &stubStore{loadErr: assert.AnError}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, DefaultSettings(), settings)
}

// TestBuild_AbsentRecordFallsBack verifies that a store with no record
// contributes nothing.
func TestBuild_AbsentRecordFallsBack(t *testing.T) {
	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), &stubStore{}).
		withDefaults().
		build()

	assert.Equal(t, DefaultSettings(), settings)
}

// ── environment layer ─────────────────────────────────────────────────────────

// TestBuild_EnvBetweenDefaultsAndPersisted verifies that EVAL_ variables
// override defaults but lose to the persisted record.
func TestBuild_EnvBetweenDefaultsAndPersisted(t *testing.T) {
	t.Setenv("EVAL_API_TIMEOUT", "5000")
	t.Setenv("EVAL_PAGINATION_PAGE_SIZE", "50")
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{"apiTimeout": 15000})}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withEnv().
		withDefaults().
		build()

	assert.Equal(t, 15000, settings.APITimeout)
	assert.Equal(t, 50, settings.Pagination.PageSize)
}

// TestBuild_MalformedEnvSkipsLayer verifies that an unparsable variable
// drops the environment layer without failing resolution.
func TestBuild_MalformedEnvSkipsLayer(t *testing.T) {
	t.Setenv("EVAL_API_TIMEOUT", "not-a-number")

	settings := newLayerBuilder(logger.Nop()).
		withEnv().
		withDefaults().
		build()

	assert.Equal(t, DefaultSettings(), settings)
}

// ── unknown keys ──────────────────────────────────────────────────────────────

// TestBuild_UnknownPersistedKeysPassThrough verifies that keys outside the
// schema survive resolution unchanged.
func TestBuild_UnknownPersistedKeysPassThrough(t *testing.T) {
	store := &stubStore{record: storedRecord(t, SchemaVersion, map[string]any{
		"theme":      "dark",
		"apiTimeout": 15000,
	})}

	settings := newLayerBuilder(logger.Nop()).
		withPersisted(context.Background(), store).
		withDefaults().
		build()

	assert.Equal(t, "dark", settings.Extra["theme"])
	assert.Equal(t, 15000, settings.APITimeout)
}

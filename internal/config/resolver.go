// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/projeval/evalctl/internal/logger"
)

// Record is the persisted settings envelope. Data holds the settings
// object as JSON; Timestamp is epoch milliseconds of the last save.
type Record struct {
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// RecordStore is the persistence backend for the settings record. Load
// returns (nil, nil) when no record exists.
type RecordStore interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Clear(ctx context.Context) error
}

// Observer is a callback invoked with the full effective settings after
// every successful mutation. Dispatch is synchronous and registration-
// ordered; a panicking observer is recovered and does not affect siblings
// or the mutating caller.
type Observer func(Settings)

// Options configures a Resolver.
type Options struct {
	// Store persists mutations and supplies the stored layer. Nil disables
	// persistence entirely.
	Store RecordStore

	// PageURL is the URL of the hosting page; its query parameters form
	// the transient top layer and its host feeds API-base detection.
	PageURL *url.URL

	// Location overrides the detection input when PageURL is nil (e.g. the
	// CLI passing a target host without a full page URL).
	Location Location

	// Transient suppresses persistence for all mutations while keeping the
	// store available as a read layer.
	Transient bool

	// Logger receives diagnostics for degraded sources. Nil means silent.
	Logger *logger.Logger
}

// Resolver owns the one effective Settings value of a session. It is
// constructed once at the composition point and passed by reference;
// mutations are atomic from the caller's perspective and complete,
// including persistence and observer notification, before returning.
type Resolver struct {
	mu        sync.RWMutex
	settings  Settings
	observers []Observer

	store     RecordStore
	transient bool
	pageURL   *url.URL
	location  Location
	logger    *logger.Logger
}

// New composes the configuration layers and returns a ready Resolver.
// Construction is total: unreadable or corrupt sources are logged and
// skipped, never surfaced as an error.
func New(ctx context.Context, opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	loc := opts.Location
	if opts.PageURL != nil {
		loc = LocationFromURL(opts.PageURL)
	}

	r := &Resolver{
		store:     opts.Store,
		transient: opts.Transient,
		pageURL:   opts.PageURL,
		location:  loc,
		logger:    log,
	}
	r.settings = r.compose(ctx)

	return r
}

// compose runs the layered resolution and fills APIBase by detection when
// no layer supplied it.
func (r *Resolver) compose(ctx context.Context) Settings {
	settings := newLayerBuilder(r.logger).
		withQuery(r.pageURL).
		withPersisted(ctx, r.store).
		withEnv().
		withDefaults().
		build()

	if settings.APIBase == "" {
		settings.APIBase = DetectAPIBase(r.location)
		r.logger.Debug().Str("apiBase", settings.APIBase).Msg("api base detected")
	}

	return settings
}

// Reload re-runs the layered resolution against the current state of all
// sources and notifies observers. Used by the store watcher when the
// persisted record changes on disk.
func (r *Resolver) Reload(ctx context.Context) {
	settings := r.compose(ctx)

	r.mu.Lock()
	r.settings = settings
	r.mu.Unlock()

	r.notify()
}

// Snapshot returns a defensive copy of the whole effective settings.
func (r *Resolver) Snapshot() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.Clone()
}

// Get returns the value stored under key, or (nil, false) for a key never
// set.
func (r *Resolver) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.Value(key)
}

// Set applies a single key/value pair to the live settings, persists, and
// notifies observers. Recognized keys are coerced to their schema type;
// unrecognized keys are accepted and stored unchanged. A recognized key
// with an uncoercible value is logged and dropped.
func (r *Resolver) Set(ctx context.Context, key string, value any) {
	r.Apply(ctx, map[string]any{key: value})
}

// Apply applies a batch patch, persists, and notifies observers once.
func (r *Resolver) Apply(ctx context.Context, patch map[string]any) {
	r.mu.Lock()
	for key, value := range patch {
		if ok := r.settings.setValue(key, value); !ok {
			r.logger.Warn().Str("key", key).Msg("ignoring value of incompatible type")
		}
	}
	r.mu.Unlock()

	r.persist(ctx)
	r.notify()
}

// Reset restores the schema defaults, re-runs API-base detection, persists,
// and notifies observers.
func (r *Resolver) Reset(ctx context.Context) {
	settings := DefaultSettings()
	settings.APIBase = DetectAPIBase(r.location)

	r.mu.Lock()
	r.settings = settings
	r.mu.Unlock()

	r.persist(ctx)
	r.notify()
}

// APIBase returns the resolved API base URL. Non-empty for the lifetime of
// the resolver.
func (r *Resolver) APIBase() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.APIBase
}

// APIURL joins the API base with endpoint so that exactly one path
// separator appears between them. An empty endpoint returns the base
// unchanged.
func (r *Resolver) APIURL(endpoint string) string {
	base := r.APIBase()
	if endpoint == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// Subscribe registers an observer. Registration order is notification
// order.
func (r *Resolver) Subscribe(observer Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, observer)
}

// persist writes the current settings as a versioned record. Store
// failures degrade to a logged warning; the in-memory mutation stands.
func (r *Resolver) persist(ctx context.Context) {
	if r.store == nil || r.transient {
		return
	}

	snapshot := r.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Warn().Err(err).Msg("encoding settings for persistence")
		return
	}

	record := &Record{
		Version:   SchemaVersion,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := r.store.Save(ctx, record); err != nil {
		r.logger.Warn().Err(err).Msg("persisting settings")
	}
}

// notify dispatches the current settings to every observer in registration
// order. Each invocation is isolated: a panic is recovered and logged, and
// the remaining observers still run.
func (r *Resolver) notify() {
	r.mu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	snapshot := r.settings.Clone()
	r.mu.RUnlock()

	for _, observer := range observers {
		r.dispatch(observer, snapshot)
	}
}

func (r *Resolver) dispatch(observer Observer, snapshot Settings) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().Any("panic", rec).Msg("settings observer panicked")
		}
	}()

	observer(snapshot.Clone())
}

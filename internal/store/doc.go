// Package store provides the persistence backends for the settings record:
// an SQLite-backed store for real sessions and an in-memory store for tests
// and transient runs. Both satisfy the config.RecordStore interface.
package store

// Package config owns the effective configuration of an evalctl session.
//
// The configuration is assembled from layered sources; for any option the
// highest-precedence source that supplies it wins:
//  1. URL query parameters of the hosting page (api_base, debug, mock)
//  2. the persisted record, when present and schema-version-matched
//  3. environment variables (EVAL_ prefix)
//  4. hard-coded defaults
//
// The main entry point is [New], which composes the layers into a
// [Resolver]. The Resolver mediates all reads and writes, persists
// mutations through a [RecordStore], and notifies subscribed observers
// synchronously on every successful mutation.
package config

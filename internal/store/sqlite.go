// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
	"github.com/projeval/evalctl/migrations"
)

// recordID pins the settings record to a single row. One session, one
// record.
const recordID = 1

// SQLite persists the settings record in a local SQLite database file.
type SQLite struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSQLite opens (and creates when absent) the database at dsn, runs
// pending migrations, and returns a ready store.
func NewSQLite(ctx context.Context, dsn string, log *logger.Logger) (*SQLite, error) {
	if log == nil {
		log = logger.Nop()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to settings database: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Debug().Str("dsn", dsn).Msg("settings store ready")
	return &SQLite{db: db, logger: log}, nil
}

// Load implements config.RecordStore. Returns (nil, nil) when no record has
// been saved yet.
func (s *SQLite) Load(ctx context.Context) (*config.Record, error) {
	query, args, err := sq.
		Select("version", "data", "updated_at").
		From("settings_record").
		Where(sq.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	var record config.Record
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&record.Version, (*[]byte)(&record.Data), &record.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings record: %w", err)
	}

	return &record, nil
}

// Save implements config.RecordStore with an upsert of the single row.
func (s *SQLite) Save(ctx context.Context, record *config.Record) error {
	query, args, err := sq.
		Insert("settings_record").
		Columns("id", "version", "data", "updated_at").
		Values(recordID, record.Version, []byte(record.Data), record.Timestamp).
		Suffix("ON CONFLICT(id) DO UPDATE SET version = excluded.version, data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write settings record: %w", err)
	}

	return nil
}

// Clear implements config.RecordStore by deleting the record.
func (s *SQLite) Clear(ctx context.Context) error {
	query, args, err := sq.
		Delete("settings_record").
		Where(sq.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete settings record: %w", err)
	}

	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

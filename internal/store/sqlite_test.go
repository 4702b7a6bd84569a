// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
)

func newMockStore(t *testing.T) (*SQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &SQLite{db: db, logger: logger.Nop()}, mock
}

// ── Load ──────────────────────────────────────────────────────────────────────

// TestSQLiteLoad_ReturnsStoredRecord verifies the single-row read.
func TestSQLiteLoad_ReturnsStoredRecord(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"version", "data", "updated_at"}).
		AddRow("1.0.0", []byte(`{"apiTimeout":15000}`), int64(1700000000000))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, data, updated_at FROM settings_record WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(rows)

	record, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "1.0.0", record.Version)
	assert.JSONEq(t, `{"apiTimeout":15000}`, string(record.Data))
	assert.Equal(t, int64(1700000000000), record.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSQLiteLoad_NoRecord verifies that an empty table yields (nil, nil),
// the "record absent" outcome the resolver treats as no layer.
func TestSQLiteLoad_NoRecord(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version, data, updated_at FROM settings_record")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "data", "updated_at"}))

	record, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, record)
}

// TestSQLiteLoad_QueryError verifies error wrapping on a failing read.
func TestSQLiteLoad_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// ── Save ──────────────────────────────────────────────────────────────────────

// TestSQLiteSave_UpsertsSingleRow verifies the ON CONFLICT upsert.
func TestSQLiteSave_UpsertsSingleRow(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings_record (id,version,data,updated_at) VALUES (?,?,?,?) ON CONFLICT(id) DO UPDATE SET")).
		WithArgs(1, "1.0.0", []byte(`{}`), int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Save(context.Background(), &config.Record{Version: "1.0.0", Data: []byte(`{}`), Timestamp: 42})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSQLiteSave_ExecError verifies error wrapping on a failing write.
func TestSQLiteSave_ExecError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO settings_record").WillReturnError(assert.AnError)

	err := s.Save(context.Background(), &config.Record{Version: "1.0.0", Data: []byte(`{}`)})
	assert.ErrorIs(t, err, assert.AnError)
}

// ── Clear ─────────────────────────────────────────────────────────────────────

// TestSQLiteClear_DeletesRecord verifies the delete statement.
func TestSQLiteClear_DeletesRecord(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM settings_record WHERE id = ?")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

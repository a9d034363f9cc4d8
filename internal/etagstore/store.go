// Package etagstore persists the last observed ETag of a monitored resource in a
// single-row SQLite table.
package etagstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	// SentinelTag seeds a fresh store. The first check reports a change unless
	// the server's own ETag happens to be "fake_etag".
	SentinelTag = "fake_etag"

	recordID = 1
)

// etagTableDDL is a variable so tests can force schema creation to fail.
var etagTableDDL = `
	CREATE TABLE IF NOT EXISTS etag (
		id INTEGER PRIMARY KEY,
		last_tag TEXT NOT NULL UNIQUE
	);
	`

var (
	// ErrSchemaMismatch is returned when an existing store file does not hold the etag table.
	ErrSchemaMismatch = errors.New("etag store schema mismatch")
	// ErrRecordMissing is returned when the singleton row is absent.
	ErrRecordMissing = errors.New("etag record missing")
)

// ChangeRecord is the singleton row of the etag table.
type ChangeRecord struct {
	ID      int64
	LastTag string
}

// Store wraps the SQLite connection holding the ChangeRecord.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Open opens the store at path. A missing file is created along with its parent
// directories and seeded with SentinelTag; an existing file is opened and its schema
// validated, never re-seeded.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "EtagStore").Str("db_path", path).Logger()

	exists, err := storeExists(path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to stat etag store")
		return nil, err
	}

	if !exists {
		dbDir := filepath.Dir(path)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create etag store directory")
			return nil, fmt.Errorf("failed to create etag store directory %s: %w", dbDir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open etag store")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// One connection, held for the lifetime of the store.
	dbInstance.SetMaxOpenConns(1)
	dbInstance.SetMaxIdleConns(1)
	dbInstance.SetConnMaxLifetime(0)
	dbInstance.SetConnMaxIdleTime(0)

	s := &Store{
		db:     dbInstance,
		path:   path,
		logger: logger,
	}

	// A store this call created is removed again on failure so that the next
	// Open starts from scratch instead of finding a file without the etag table.
	abort := func(err error) (*Store, error) {
		s.Close()
		if !exists {
			s.removeFiles()
		}
		return nil, err
	}

	if err := s.db.PingContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to etag store")
		return abort(fmt.Errorf("failed to connect to %s: %w", path, err))
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return abort(fmt.Errorf("sqlite: exec busy_timeout: %w", err))
	}

	if exists {
		err = s.ValidateSchema(ctx)
	} else {
		err = s.initSchema(ctx)
	}
	if err != nil {
		return abort(err)
	}

	logger.Debug().Bool("created", !exists).Msg("Etag store opened")
	return s, nil
}

func storeExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("store path %s is a directory", path)
	}
	// SQLite reads a zero-length file as an empty database; initialize it.
	return info.Size() > 0, nil
}

func (s *Store) removeFiles() {
	for _, p := range []string{s.path, s.path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("file", p).Msg("Failed to remove incomplete etag store")
		}
	}
}

// initSchema creates the etag table and seeds the singleton row in one transaction.
func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, etagTableDDL); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create etag table")
		return fmt.Errorf("failed to create etag table: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO etag (id, last_tag) VALUES (?, ?)`,
		recordID, SentinelTag,
	); err != nil {
		s.logger.Error().Err(err).Msg("Failed to seed etag record")
		return fmt.Errorf("failed to seed etag record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	s.logger.Info().Msg("Etag store initialized")
	return nil
}

// ValidateSchema checks that the etag table exists with id and last_tag columns.
func (s *Store) ValidateSchema(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('etag')`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	for _, col := range []string{"id", "last_tag"} {
		if !columns[col] {
			s.logger.Error().Str("column", col).Msg("Etag store is missing a required column")
			return fmt.Errorf("%w: table etag has no column %q", ErrSchemaMismatch, col)
		}
	}
	return nil
}

// LastTag returns the stored identifier.
func (s *Store) LastTag(ctx context.Context) (string, error) {
	var tag string
	err := s.db.QueryRowContext(ctx, `SELECT last_tag FROM etag WHERE id = ?`, recordID).Scan(&tag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecordMissing
		}
		s.logger.Error().Err(err).Msg("Failed to read last tag")
		return "", fmt.Errorf("failed to read last tag: %w", err)
	}
	return tag, nil
}

// Record returns the singleton row.
func (s *Store) Record(ctx context.Context) (ChangeRecord, error) {
	tag, err := s.LastTag(ctx)
	if err != nil {
		return ChangeRecord{}, err
	}
	return ChangeRecord{ID: recordID, LastTag: tag}, nil
}

// SetLastTag overwrites the stored identifier. The statement runs in autocommit
// mode, so the write is committed when this returns nil.
func (s *Store) SetLastTag(ctx context.Context, tag string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE etag SET last_tag = ? WHERE id = ?`, tag, recordID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to update last tag")
		return fmt.Errorf("failed to update last tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrRecordMissing
	}
	s.logger.Debug().Str("last_tag", tag).Msg("Last tag updated")
	return nil
}

// Path returns the filesystem location of the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection. Calling it more than once is safe.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

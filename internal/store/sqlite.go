package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/fairwayforecast/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite database at path with WAL journaling and runs all
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// GetCachedPayload returns the cached body for key if it has not expired at
// now. A miss returns nil, nil.
func (s *Store) GetCachedPayload(key string, now time.Time) (*models.CacheEntry, error) {
	var (
		e                  models.CacheEntry
		fetched, expiresAt int64
	)
	err := s.db.QueryRow(`
		SELECT cache_key, body, fetched_at, expires_at
		FROM forecast_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, now.Unix()).Scan(&e.Key, &e.Body, &fetched, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached payload %s: %w", key, err)
	}
	e.FetchedAt = time.Unix(fetched, 0).UTC()
	e.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &e, nil
}

// PutCachedPayload stores body under key until fetchedAt+ttl, replacing any
// previous entry.
func (s *Store) PutCachedPayload(key string, body []byte, fetchedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("put cached payload %s: ttl must be positive", key)
	}
	_, err := s.db.Exec(`
		INSERT INTO forecast_cache (cache_key, body, fetched_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, key, body, fetchedAt.Unix(), fetchedAt.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("put cached payload %s: %w", key, err)
	}
	return nil
}

// DeleteCachedPayload drops a single entry, used when a cached body turns out
// to be unreadable.
func (s *Store) DeleteCachedPayload(key string) error {
	_, err := s.db.Exec("DELETE FROM forecast_cache WHERE cache_key = ?", key)
	return err
}

// PruneExpired removes cache rows that expired at or before now.
func (s *Store) PruneExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM forecast_cache WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) CacheSize() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM forecast_cache").Scan(&n)
	return n, err
}

// RecordIngestRun appends a fetch or warm cycle to the run log.
func (s *Store) RecordIngestRun(run models.IngestRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO ingest_runs (source, started_at, finished_at, success, records, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Source, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Success, run.Records, run.Error)
	if err != nil {
		return 0, fmt.Errorf("record ingest run: %w", err)
	}
	return res.LastInsertId()
}

// LastIngestRun returns the most recent run for source, or nil if none.
func (s *Store) LastIngestRun(source string) (*models.IngestRun, error) {
	var (
		run             models.IngestRun
		started, finish int64
	)
	err := s.db.QueryRow(`
		SELECT id, source, started_at, finished_at, success, records, error
		FROM ingest_runs
		WHERE source = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, source).Scan(&run.ID, &run.Source, &started, &finish, &run.Success, &run.Records, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last ingest run %s: %w", source, err)
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	run.FinishedAt = time.Unix(finish, 0).UTC()
	return &run, nil
}

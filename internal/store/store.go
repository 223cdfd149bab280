// Package store provides SQLite persistence for pipeline results.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/tunde-oladipo/casefile-audit/internal/common"
	"github.com/tunde-oladipo/casefile-audit/internal/consolidate"
	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
)

// Store persists and retrieves completed runs. All methods are safe for
// concurrent use via an internal mutex.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *slog.Logger
}

// RunInfo is the listing row for a stored run.
type RunInfo struct {
	ID            string    `json:"processing_id"`
	SourceName    string    `json:"file_path"`
	ProcessedAt   time.Time `json:"processed_at"`
	SegmentsFound int       `json:"segments_found"`
	People        int       `json:"people_identified"`
}

// Open creates a Store at dbPath, creating tables if needed. In-memory
// databases get a single shared-cache connection so every query sees the
// same data.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connStr := dbPath
	if dbPath == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, log: logger}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		processed_at TIMESTAMP NOT NULL,
		segments_found INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS people (
		run_id TEXT NOT NULL REFERENCES runs(id),
		person_key TEXT NOT NULL,
		name TEXT NOT NULL,
		date_of_birth TEXT,
		document_count INTEGER NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (run_id, person_key)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_processed_at ON runs(processed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_people_name ON people(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a completed run and its person records.
func (s *Store) SaveRun(ctx context.Context, res *pipeline.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(res)
	if err != nil {
		return common.WrapError(err, "marshal result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin tx")
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("runs").
		Columns("id", "source_name", "processed_at", "segments_found", "result_json").
		Values(res.ProcessingID, res.SourceName, res.ProcessedAt, res.SegmentsFound, string(blob)).
		ToSql()
	if err != nil {
		return common.WrapError(err, "build insert")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return common.WrapError(err, "insert run")
	}

	for _, key := range res.People.SortedKeys() {
		person := res.People[key]
		recBlob, err := json.Marshal(person)
		if err != nil {
			return common.WrapError(err, "marshal person record")
		}
		query, args, err := sq.Insert("people").
			Columns("run_id", "person_key", "name", "date_of_birth", "document_count", "record_json").
			Values(res.ProcessingID, key, person.Name, person.DateOfBirth, len(person.Documents), string(recBlob)).
			ToSql()
		if err != nil {
			return common.WrapError(err, "build insert person")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return common.WrapError(err, "insert person")
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit")
	}

	s.log.Info("store.run.saved",
		"run_id", res.ProcessingID,
		"segments", res.SegmentsFound,
		"people", len(res.People),
	)
	return nil
}

// GetRun loads one stored run by processing ID.
func (s *Store) GetRun(ctx context.Context, id string) (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := sq.Select("result_json").
		From("runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, common.WrapError(err, "build select")
	}

	var blob string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "query run")
	}

	var res pipeline.Result
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, common.WrapError(err, "unmarshal result")
	}
	return &res, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query, args, err := sq.Select(
		"r.id", "r.source_name", "r.processed_at", "r.segments_found",
		"(SELECT COUNT(*) FROM people p WHERE p.run_id = r.id)").
		From("runs r").
		OrderBy("r.processed_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, common.WrapError(err, "build select")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "query runs")
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.SourceName, &info.ProcessedAt, &info.SegmentsFound, &info.People); err != nil {
			return nil, common.WrapError(err, "scan run")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// PeopleForRun returns the person records stored for one run, keyed the way
// the consolidator keyed them.
func (s *Store) PeopleForRun(ctx context.Context, runID string) (consolidate.Records, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := sq.Select("person_key", "record_json").
		From("people").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("person_key").
		ToSql()
	if err != nil {
		return nil, common.WrapError(err, "build select")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "query people")
	}
	defer rows.Close()

	out := consolidate.Records{}
	for rows.Next() {
		var key, blob string
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, common.WrapError(err, "scan person")
		}
		var rec consolidate.PersonRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, common.WrapError(err, "unmarshal person record")
		}
		out[key] = &rec
	}
	return out, rows.Err()
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuicoin/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for toss history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tosses (
			id TEXT PRIMARY KEY,
			requested_at TEXT NOT NULL,
			resolved_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			source TEXT NOT NULL,
			latency_ms INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tosses_resolved_at ON tosses(resolved_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertToss stores a resolved toss.
func (s *Store) InsertToss(ctx context.Context, toss model.Toss) error {
	if toss.ID == "" {
		return fmt.Errorf("toss id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tosses (id, requested_at, resolved_at, outcome, source, latency_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toss.ID,
		toss.RequestedAt.UTC().Format(timeLayout),
		toss.ResolvedAt.UTC().Format(timeLayout),
		toss.Outcome,
		toss.Source,
		toss.LatencyMs,
		toss.Error,
	)
	return err
}

// ListTosses returns tosses filtered by cfg, oldest first.
func (s *Store) ListTosses(ctx context.Context, cfg model.HistoryConfig) ([]model.Toss, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "resolved_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, requested_at, resolved_at, outcome, source, latency_ms, error
		FROM tosses
		WHERE %s
		ORDER BY resolved_at ASC, rowid ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var tosses []model.Toss
	for rows.Next() {
		var toss model.Toss
		var requestedAt, resolvedAt string
		if err := rows.Scan(&toss.ID, &requestedAt, &resolvedAt, &toss.Outcome, &toss.Source, &toss.LatencyMs, &toss.Error); err != nil {
			return nil, err
		}
		if toss.RequestedAt, err = time.Parse(timeLayout, requestedAt); err != nil {
			return nil, err
		}
		if toss.ResolvedAt, err = time.Parse(timeLayout, resolvedAt); err != nil {
			return nil, err
		}
		tosses = append(tosses, toss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tosses, nil
}

// Counts tallies all recorded tosses by outcome.
func (s *Store) Counts(ctx context.Context) (model.OutcomeCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM tosses GROUP BY outcome`)
	if err != nil {
		return model.OutcomeCounts{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var counts model.OutcomeCounts
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return model.OutcomeCounts{}, err
		}
		switch outcome {
		case "HEADS":
			counts.Heads += n
		case "TAILS":
			counts.Tails += n
		default:
			counts.Errors += n
		}
	}
	if err := rows.Err(); err != nil {
		return model.OutcomeCounts{}, err
	}
	return counts, nil
}

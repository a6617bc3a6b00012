// Package history keeps a sqlite log of sort runs so timings can be
// compared across worker counts, radixes and machines.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded sort.
type Run struct {
	ID          int64
	At          time.Time
	Host        string // CPU brand string
	Dist        string
	Keys        int
	MaxKey      uint64
	Radix       int
	Workers     int
	Passes      int
	Elapsed     time.Duration
	MaxRankTime time.Duration
	MaxSortTime time.Duration
	Digest      string
	Passed      bool
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	at_unix_nano  INTEGER NOT NULL,
	host          TEXT    NOT NULL,
	dist          TEXT    NOT NULL,
	keys          INTEGER NOT NULL,
	max_key       INTEGER NOT NULL,
	radix         INTEGER NOT NULL,
	workers       INTEGER NOT NULL,
	passes        INTEGER NOT NULL,
	elapsed_ns    INTEGER NOT NULL,
	max_rank_ns   INTEGER NOT NULL,
	max_sort_ns   INTEGER NOT NULL,
	digest        TEXT    NOT NULL,
	passed        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_shape ON runs (keys, radix, workers);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// DB is an open run log.
type DB struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens or creates the run log at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return nil, errors.Join(fmt.Errorf("configure history (%s): %w", p, err), db.Close())
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Join(fmt.Errorf("create history schema: %w", err), db.Close())
	}

	insert, err := db.PrepareContext(ctx, `
		INSERT INTO runs (at_unix_nano, host, dist, keys, max_key, radix, workers, passes,
		                  elapsed_ns, max_rank_ns, max_sort_ns, digest, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("prepare history insert: %w", err), db.Close())
	}
	return &DB{db: db, insert: insert}, nil
}

// Record appends run and returns its id.
//
// sqlite integers are signed 64-bit; MaxKey is stored by bit pattern.
func (h *DB) Record(ctx context.Context, run Run) (int64, error) {
	res, err := h.insert.ExecContext(ctx,
		run.At.UnixNano(), run.Host, run.Dist, run.Keys, int64(run.MaxKey),
		run.Radix, run.Workers, run.Passes,
		int64(run.Elapsed), int64(run.MaxRankTime), int64(run.MaxSortTime),
		run.Digest, run.Passed)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

const runColumns = `id, at_unix_nano, host, dist, keys, max_key, radix, workers, passes,
	elapsed_ns, max_rank_ns, max_sort_ns, digest, passed`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r                         Run
		at, maxKey                int64
		elapsed, maxRank, maxSort int64
	)
	if err := s.Scan(&r.ID, &at, &r.Host, &r.Dist, &r.Keys, &maxKey, &r.Radix, &r.Workers,
		&r.Passes, &elapsed, &maxRank, &maxSort, &r.Digest, &r.Passed); err != nil {
		return Run{}, err
	}
	r.At = time.Unix(0, at)
	r.MaxKey = uint64(maxKey)
	r.Elapsed = time.Duration(elapsed)
	r.MaxRankTime = time.Duration(maxRank)
	r.MaxSortTime = time.Duration(maxSort)
	return r, nil
}

// Recent returns up to limit runs, newest first.
func (h *DB) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Best returns the fastest passing run with the given shape, or false if
// there is none.
func (h *DB) Best(ctx context.Context, keys, radix, workers int) (Run, bool, error) {
	row := h.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs
		WHERE keys = ? AND radix = ? AND workers = ? AND passed = 1
		ORDER BY elapsed_ns ASC LIMIT 1`, keys, radix, workers)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("query best run: %w", err)
	}
	return r, true, nil
}

// Close closes the run log.
func (h *DB) Close() error {
	return errors.Join(h.insert.Close(), h.db.Close())
}

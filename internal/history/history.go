// Package history implements a small append-only run ledger at
// .dat/history.db, recording one row per push, pull, stash, stash pop
// and administrative command invocation (status writes no row). This is
// not part of the reconciliation core: no dat command reads the ledger
// back, and the reconciler never consults it.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, registers as "sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded command invocation.
type Run struct {
	Command         string
	StartedAt       time.Time
	FinishedAt      time.Time
	Outcome         string // "ok", "conflicts", "error"
	ActionableCount int
	ConflictCount   int
	Detail          string
}

// Ledger wraps the history database.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger at path and applies any
// pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("history: migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("history: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("history: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Debug("history: applied migration", "source", r.Source.Path)
	}

	return nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends a run to the ledger.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (command, started_at, finished_at, outcome, actionable_count, conflict_count, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Command, r.StartedAt.Format(time.RFC3339), r.FinishedAt.Format(time.RFC3339),
		r.Outcome, r.ActionableCount, r.ConflictCount, r.Detail,
	)
	if err != nil {
		return fmt.Errorf("history: recording run: %w", err)
	}

	return nil
}

// Recent returns the most recent n runs, newest first.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT command, started_at, finished_at, outcome, actionable_count, conflict_count, detail
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			r                   Run
			startedAt, finished string
		)

		if err := rows.Scan(&r.Command, &startedAt, &finished, &r.Outcome, &r.ActionableCount, &r.ConflictCount, &r.Detail); err != nil {
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}

		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

package store

import (
	"context"
	"fmt"
	"time"
)

// Run is one discover+details pass, kept for status output.
type Run struct {
	ID         string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Keywords   string    `json:"keywords"`
	Location   string    `json:"location"`
	Pages      int       `json:"pages"`
	Discovered int       `json:"discovered"`
	Detailed   int       `json:"detailed"`
	Failed     int       `json:"failed"`
	LastError  string    `json:"last_error"`
}

// RecordRun inserts or replaces the row for r.ID.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	finished := ""
	if !r.FinishedAt.IsZero() {
		finished = r.FinishedAt.UTC().Format(time.RFC3339)
	}
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO scrape_runs (run_id, started_at, finished_at, keywords, location, pages, discovered, detailed, failed, last_error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  finished_at = excluded.finished_at,
  pages = excluded.pages,
  discovered = excluded.discovered,
  detailed = excluded.detailed,
  failed = excluded.failed,
  last_error = excluded.last_error;`,
		r.ID,
		r.StartedAt.UTC().Format(time.RFC3339),
		finished,
		r.Keywords,
		r.Location,
		r.Pages,
		r.Discovered,
		r.Detailed,
		r.Failed,
		r.LastError,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// LastRuns returns up to limit runs, most recent first.
func (d *DB) LastRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT run_id, started_at, finished_at, keywords, location, pages, discovered, detailed, failed, last_error
FROM scrape_runs
ORDER BY started_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Keywords, &r.Location,
			&r.Pages, &r.Discovered, &r.Detailed, &r.Failed, &r.LastError); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

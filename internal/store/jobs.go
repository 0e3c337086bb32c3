package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobhunt-scout/internal/domain"
)

// Counts summarizes the table for status output.
type Counts struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	Applied  int `json:"applied"`
}

// IncompleteIDs lists jobs without a company name, oldest discovery first.
// This is the detail stage's work queue; it is what makes runs resumable.
func (d *DB) IncompleteIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT Job_ID
FROM jobs
WHERE company IS NULL OR company = ''
ORDER BY discovery_seq, Job_ID;`)
	if err != nil {
		return nil, fmt.Errorf("list incomplete: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *DB) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE Job_ID = ?;`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return j, err
}

func (d *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := d.Pool.QueryRowContext(ctx, `
SELECT
  COUNT(*),
  COALESCE(SUM(CASE WHEN company IS NOT NULL AND company != '' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN applied IS NOT NULL THEN 1 ELSE 0 END), 0)
FROM jobs;`).Scan(&c.Total, &c.Complete, &c.Applied)
	if err != nil {
		return Counts{}, fmt.Errorf("count jobs: %w", err)
	}
	return c, nil
}

// Description is a stored posting text awaiting language detection.
type Description struct {
	ID   int64
	Text string
}

func (d *DB) Descriptions(ctx context.Context) ([]Description, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT Job_ID, Job_txt
FROM jobs
WHERE Job_txt IS NOT NULL
ORDER BY Job_ID;`)
	if err != nil {
		return nil, fmt.Errorf("list descriptions: %w", err)
	}
	defer rows.Close()

	var out []Description
	for rows.Next() {
		var ds Description
		if err := rows.Scan(&ds.ID, &ds.Text); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// SetLanguages updates the language column for every id in langs in one
// transaction. A nil value stores NULL.
func (d *DB) SetLanguages(ctx context.Context, langs map[int64]*string) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE jobs SET language = ? WHERE Job_ID = ?;`)
	if err != nil {
		return fmt.Errorf("prepare language update: %w", err)
	}
	defer stmt.Close()

	for id, lang := range langs {
		if _, err := stmt.ExecContext(ctx, nullable(lang), id); err != nil {
			return fmt.Errorf("update job %d language: %w", id, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (domain.Job, error) {
	var (
		j       domain.Job
		cols    [15]sql.NullString
		applied sql.NullInt64
	)
	err := s.Scan(
		&j.ID,
		&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6],
		&cols[7], &cols[8], &cols[9], &cols[10], &cols[11], &cols[12], &cols[13], &cols[14],
		&applied, &j.DiscoverySeq, &j.DiscoveredAt,
	)
	if err != nil {
		return domain.Job{}, err
	}

	j.WorkMode = fromNull(cols[0])
	j.EmploymentType = fromNull(cols[1])
	j.Level = fromNull(cols[2])
	j.Description = fromNull(cols[3])
	j.Language = fromNull(cols[4])
	j.Company = fromNull(cols[5])
	j.Title = fromNull(cols[6])
	j.Location = fromNull(cols[7])
	j.PostedAgo = fromNull(cols[8])
	j.PostedAt = fromNull(cols[9])
	j.Applicants = fromNull(cols[10])
	j.Fit = fromNull(cols[11])
	j.EmployerSize = fromNull(cols[12])
	j.Sector = fromNull(cols[13])
	j.ScrapeDate = fromNull(cols[14])
	j.Applied = applied.Valid && applied.Int64 != 0
	return j, nil
}

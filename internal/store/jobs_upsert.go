package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobhunt-scout/internal/domain"
)

// UpsertIDs records freshly discovered job ids in one transaction. Known ids
// are left untouched. It returns how many ids were new.
func (d *DB) UpsertIDs(ctx context.Context, ids []int64) (added int, err error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO jobs (Job_ID, discovery_seq, discovered_at)
VALUES (?, (SELECT COALESCE(MAX(discovery_seq), 0) + 1 FROM jobs), ?);`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert ids: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id, now)
		if err != nil {
			return 0, fmt.Errorf("insert job id %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ids: %w", err)
	}
	return added, nil
}

// UpsertDetails writes every detail column of j in a single statement, so a
// reader never sees a half-updated row. Nil fields overwrite with NULL;
// applied and the discovery columns are never touched for an existing row.
func (d *DB) UpsertDetails(ctx context.Context, j domain.Job) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO jobs (
  Job_ID, type_work, time_work, level, Job_txt, language, company, job_title,
  location, posted_time_ago, date_post, nb_candidats, fit, employes, sector, scraping_date,
  discovery_seq, discovered_at
) VALUES (
  ?, ?, ?, ?, ?, ?, ?, ?,
  ?, ?, ?, ?, ?, ?, ?, ?,
  (SELECT COALESCE(MAX(discovery_seq), 0) + 1 FROM jobs), ?
)
ON CONFLICT(Job_ID) DO UPDATE SET
  type_work = excluded.type_work,
  time_work = excluded.time_work,
  level = excluded.level,
  Job_txt = excluded.Job_txt,
  language = excluded.language,
  company = excluded.company,
  job_title = excluded.job_title,
  location = excluded.location,
  posted_time_ago = excluded.posted_time_ago,
  date_post = excluded.date_post,
  nb_candidats = excluded.nb_candidats,
  fit = excluded.fit,
  employes = excluded.employes,
  sector = excluded.sector,
  scraping_date = excluded.scraping_date;`,
		j.ID,
		nullable(j.WorkMode),
		nullable(j.EmploymentType),
		nullable(j.Level),
		nullable(j.Description),
		nullable(j.Language),
		nullable(j.Company),
		nullable(j.Title),
		nullable(j.Location),
		nullable(j.PostedAgo),
		nullable(j.PostedAt),
		nullable(j.Applicants),
		nullable(j.Fit),
		nullable(j.EmployerSize),
		nullable(j.Sector),
		nullable(j.ScrapeDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert job %d details: %w", j.ID, err)
	}
	return nil
}

// MarkApplied sets applied on an unapplied job. The flag is never cleared.
// changed is false when the job was already marked.
func (d *DB) MarkApplied(ctx context.Context, id int64) (changed bool, err error) {
	res, err := d.Pool.ExecContext(ctx, `
UPDATE jobs
SET applied = 1
WHERE Job_ID = ?
  AND applied IS NULL;`, id)
	if err != nil {
		return false, fmt.Errorf("mark job %d applied: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var one int
	err = d.Pool.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE Job_ID = ? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

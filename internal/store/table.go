package store

import (
	"database/sql"
	"fmt"
)

// Column names follow the legacy jobs.db layout, which other tooling reads
// directly. scraping_date is cast so the driver hands back the stored text
// instead of a parsed DATE.
const jobColumns = `Job_ID, type_work, time_work, level, Job_txt, language, company, job_title,
  location, posted_time_ago, date_post, nb_candidats, fit, employes, sector,
  CAST(scraping_date AS TEXT), applied, discovery_seq, discovered_at`

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  Job_ID INTEGER PRIMARY KEY,
  type_work TEXT,
  time_work TEXT,
  Job_txt TEXT,
  company TEXT,
  job_title TEXT,
  level TEXT,
  location TEXT,
  posted_time_ago TEXT,
  nb_candidats TEXT,
  fit TEXT,
  employes TEXT,
  sector TEXT,
  scraping_date DATE,
  date_post TEXT,
  language TEXT,
  applied INTEGER
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS scrape_runs (
  run_id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL DEFAULT '',
  keywords TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  pages INTEGER NOT NULL DEFAULT 0,
  discovered INTEGER NOT NULL DEFAULT 0,
  detailed INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	// A jobs.db written by the old scraper has the table but not the
	// discovery ordering columns.
	if !columnExists(tx, "jobs", "discovery_seq") {
		if _, err := tx.Exec(`ALTER TABLE jobs ADD COLUMN discovery_seq INTEGER NOT NULL DEFAULT 0;`); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE jobs SET discovery_seq = rowid WHERE discovery_seq = 0;`); err != nil {
			return err
		}
	}
	if !columnExists(tx, "jobs", "discovered_at") {
		if _, err := tx.Exec(`ALTER TABLE jobs ADD COLUMN discovered_at TEXT NOT NULL DEFAULT '';`); err != nil {
			return err
		}
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_date_post
ON jobs(date_post);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_discovery_seq
ON jobs(discovery_seq);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}

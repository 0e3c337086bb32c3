package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobhunt-scout/internal/domain"
)

// ReviewQuery holds the relevance predicates of the review queue. All of
// them are ANDed. Empty exclusion lists and empty substrings disable their
// predicate; an empty Languages list matches nothing.
type ReviewQuery struct {
	Languages       []string
	Since           time.Time // date_post >= Since
	WorkModes       []string  // accepted besides unset
	ExcludedLevels  []string
	ExcludedSectors []string
	ExcludedTitle   string // case-sensitive substring of job_title
	ExcludedFit     string // case-sensitive substring of fit
	Limit           int
}

// ListReview runs q and returns matching jobs, newest posting first. It
// never writes, so it can be re-run at any time.
func (d *DB) ListReview(ctx context.Context, q ReviewQuery) ([]domain.Job, error) {
	var (
		where []string
		args  []any
	)

	if len(q.Languages) == 0 {
		where = append(where, "1 = 0")
	} else {
		where = append(where, "language IN ("+placeholders(len(q.Languages))+")")
		args = appendStrings(args, q.Languages)
	}

	where = append(where, "date_post >= ?")
	args = append(args, q.Since.UTC().Format(domain.PostedAtLayout))

	modes := "type_work IS NULL OR type_work = ''"
	if len(q.WorkModes) > 0 {
		modes += " OR type_work IN (" + placeholders(len(q.WorkModes)) + ")"
		args = appendStrings(args, q.WorkModes)
	}
	where = append(where, "("+modes+")")

	if len(q.ExcludedLevels) > 0 {
		where = append(where, "(level IS NULL OR level NOT IN ("+placeholders(len(q.ExcludedLevels))+"))")
		args = appendStrings(args, q.ExcludedLevels)
	}
	if len(q.ExcludedSectors) > 0 {
		where = append(where, "(sector IS NULL OR sector NOT IN ("+placeholders(len(q.ExcludedSectors))+"))")
		args = appendStrings(args, q.ExcludedSectors)
	}
	// instr, not LIKE: LIKE is case-insensitive for ASCII in sqlite.
	if q.ExcludedTitle != "" {
		where = append(where, "(job_title IS NULL OR instr(job_title, ?) = 0)")
		args = append(args, q.ExcludedTitle)
	}
	if q.ExcludedFit != "" {
		where = append(where, "(fit IS NULL OR instr(fit, ?) = 0)")
		args = append(args, q.ExcludedFit)
	}

	where = append(where, "time_work IS NOT NULL", "applied IS NULL")

	limit := ""
	if q.Limit > 0 {
		limit = "LIMIT ?"
		args = append(args, q.Limit)
	}

	query := fmt.Sprintf(`
SELECT %s
FROM jobs
WHERE %s
ORDER BY date_post DESC, Job_ID
%s;
`, jobColumns, strings.Join(where, "\n  AND "), limit)

	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendStrings(args []any, vals []string) []any {
	for _, v := range vals {
		args = append(args, v)
	}
	return args
}

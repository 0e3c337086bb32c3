// Package review turns stored jobs into the human review queue and runs the
// interactive apply loop over it.
package review

import (
	"time"

	"jobhunt-scout/internal/store"
)

// Relevance heuristics of the review queue. They have no general rule
// behind them; override them in the review section of the config.
const (
	DefaultExcludedTitle = "fullstack"
	DefaultExcludedFit   = "Stand out"
	DefaultMaxAgeDays    = 30
)

var (
	DefaultLanguages       = []string{"en", "pt"}
	DefaultWorkModes       = []string{"Remote"}
	DefaultExcludedLevels  = []string{"Director", "Entry level"}
	DefaultExcludedSectors = []string{"Staffing and Recruiting"}
)

// Policy is the set of predicates a job must pass to be reviewed.
type Policy struct {
	Languages       []string
	MaxAgeDays      int
	WorkModes       []string
	ExcludedLevels  []string
	ExcludedSectors []string
	ExcludedTitle   string
	ExcludedFit     string
}

func DefaultPolicy() Policy {
	return Policy{
		Languages:       append([]string(nil), DefaultLanguages...),
		MaxAgeDays:      DefaultMaxAgeDays,
		WorkModes:       append([]string(nil), DefaultWorkModes...),
		ExcludedLevels:  append([]string(nil), DefaultExcludedLevels...),
		ExcludedSectors: append([]string(nil), DefaultExcludedSectors...),
		ExcludedTitle:   DefaultExcludedTitle,
		ExcludedFit:     DefaultExcludedFit,
	}
}

// Query builds the store query for the review queue as of now.
func (p Policy) Query(now time.Time) store.ReviewQuery {
	days := p.MaxAgeDays
	if days <= 0 {
		days = DefaultMaxAgeDays
	}
	return store.ReviewQuery{
		Languages:       p.Languages,
		Since:           now.Add(-time.Duration(days) * 24 * time.Hour),
		WorkModes:       p.WorkModes,
		ExcludedLevels:  p.ExcludedLevels,
		ExcludedSectors: p.ExcludedSectors,
		ExcludedTitle:   p.ExcludedTitle,
		ExcludedFit:     p.ExcludedFit,
	}
}

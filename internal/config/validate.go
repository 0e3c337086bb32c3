package config

import (
	"fmt"
	"strings"
	"time"

	"jobhunt-scout/internal/langdetect"
	"jobhunt-scout/internal/logging"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg: lists trimmed and
// deduplicated, language codes reduced to their base code.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Keywords = strings.TrimSpace(out.Search.Keywords)
	out.Search.Location = strings.TrimSpace(out.Search.Location)
	out.Credentials.User = strings.TrimSpace(out.Credentials.User)

	out.Review.WorkModes = trimList(out.Review.WorkModes)
	out.Review.ExcludedLevels = trimList(out.Review.ExcludedLevels)
	out.Review.ExcludedSectors = trimList(out.Review.ExcludedSectors)

	var langs []string
	for _, l := range trimList(out.Review.Languages) {
		code, err := langdetect.Normalize(l)
		if err != nil {
			res.addErr("review.languages: %v", err)
			continue
		}
		langs = append(langs, code)
	}
	out.Review.Languages = trimList(langs)

	// ---- Validation rules ----

	if _, err := logging.ParseLevel(out.App.LogLevel); err != nil {
		res.addErr("app.log_level: %v", err)
	}
	if strings.TrimSpace(out.App.DBFile) == "" {
		res.addErr("app.db_file is required")
	}

	if out.Search.MaxPages < 0 {
		res.addErr("search.max_pages must be >= 0")
	}

	if out.Fetch.ReadyTimeout <= 0 {
		res.addErr("fetch.ready_timeout must be > 0")
	}
	if out.Fetch.JitterMin < 0 || out.Fetch.JitterMax < out.Fetch.JitterMin {
		res.addErr("fetch.jitter_min/jitter_max must satisfy 0 <= min <= max")
	}
	if out.Fetch.RateLimitCooldown < 0 || out.Fetch.NotReadyCooldown < 0 {
		res.addErr("fetch cooldowns must be >= 0")
	}
	if out.Fetch.RequestsPerSecond > 2 {
		res.addWarn("fetch.requests_per_second is high (%.2f); the site rate-limits aggressively.", out.Fetch.RequestsPerSecond)
	}
	if strings.TrimSpace(out.Fetch.ReadySelector) == "" {
		res.addWarn("fetch.ready_selector is empty; pages are parsed without waiting.")
	}

	if len(out.Review.Languages) == 0 {
		res.addWarn("review.languages is empty; the review queue will always be empty.")
	}
	if out.Review.MaxAgeDays <= 0 {
		res.addErr("review.max_age_days must be > 0")
	}

	if out.Watch.Every < 0 {
		res.addErr("watch.every must be >= 0")
	} else if out.Watch.Every > 0 && out.Watch.Every < 10*time.Minute {
		res.addWarn("watch.every is very low (%s) and may get the account rate-limited.", out.Watch.Every)
	}

	return out, res
}

package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobhunt-scout/internal/domain"
)

// TimestampLayout is the stored posting-time format.
const TimestampLayout = domain.PostedAtLayout

// RepostMarker prefixes the relative time of re-listed postings.
const RepostMarker = "Reposted"

// relUnit steps either by a clock duration or by whole days. Day-based
// units go through AddDate so large counts stay in the past.
type relUnit struct {
	re   *regexp.Regexp
	step time.Duration
	days int
}

// Tried in this order; the first match wins. Months and years are
// approximated as 30 and 365 days, the site gives no calendar context.
var relUnits = []relUnit{
	{re: regexp.MustCompile(`^(\d+) minutes? ago`), step: time.Minute},
	{re: regexp.MustCompile(`^(\d+) hours? ago`), step: time.Hour},
	{re: regexp.MustCompile(`^(\d+) days? ago`), days: 1},
	{re: regexp.MustCompile(`^(\d+) weeks? ago`), days: 7},
	{re: regexp.MustCompile(`^(\d+) months? ago`), days: 30},
	{re: regexp.MustCompile(`^(\d+) years? ago`), days: 365},
}

// maxDaysAgo bounds day arithmetic; anything older is treated as garbage.
const maxDaysAgo = math.MaxInt32

// ParseRelativeTime turns "3 days ago" into now-3d. ok is false when the
// phrase matches no unit; that is an ordinary outcome, not an error.
func ParseRelativeTime(phrase string, now time.Time) (t time.Time, ok bool) {
	phrase = strings.TrimSpace(strings.ReplaceAll(phrase, RepostMarker, ""))

	for _, u := range relUnits {
		m := u.re.FindStringSubmatch(phrase)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		if u.days > 0 {
			if n > maxDaysAgo/u.days {
				return time.Time{}, false
			}
			return now.UTC().AddDate(0, 0, -n*u.days), true
		}
		if int64(n) > math.MaxInt64/int64(u.step) {
			return time.Time{}, false
		}
		return now.UTC().Add(-time.Duration(n) * u.step), true
	}
	return time.Time{}, false
}

// NormalizePostedAt formats ParseRelativeTime's result, or returns "" when
// the phrase is unparseable.
func NormalizePostedAt(phrase string, now time.Time) string {
	t, ok := ParseRelativeTime(phrase, now)
	if !ok {
		return ""
	}
	return t.Format(TimestampLayout)
}

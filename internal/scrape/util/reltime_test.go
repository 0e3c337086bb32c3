package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-scout/internal/scrape/util"
)

var ref = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestParseRelativeTimeUnits(t *testing.T) {
	cases := []struct {
		phrase string
		want   time.Time
	}{
		{"1 minute ago", ref.Add(-time.Minute)},
		{"45 minutes ago", ref.Add(-45 * time.Minute)},
		{"2 hours ago", ref.Add(-2 * time.Hour)},
		{"5 days ago", ref.AddDate(0, 0, -5)},
		{"1 week ago", ref.AddDate(0, 0, -7)},
		{"3 weeks ago", ref.AddDate(0, 0, -21)},
		{"2 months ago", ref.AddDate(0, 0, -60)},
		{"1 year ago", ref.AddDate(0, 0, -365)},
		{"Reposted 4 days ago", ref.AddDate(0, 0, -4)},
		{"  Reposted  1 hour ago ", ref.Add(-time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.phrase, func(t *testing.T) {
			got, ok := util.ParseRelativeTime(tc.phrase, ref)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestParseRelativeTimeMonthsAreThirtyDays(t *testing.T) {
	got, ok := util.ParseRelativeTime("2 months ago", ref)
	require.True(t, ok)
	assert.True(t, ref.AddDate(0, 0, -60).Equal(got))

	// Calendar arithmetic would give 2023-03-03 here.
	end := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
	got, ok = util.ParseRelativeTime("1 month ago", end)
	require.True(t, ok)
	assert.Equal(t, "2023-03-01T00:00:00+0000", got.Format(util.TimestampLayout))

	got, ok = util.ParseRelativeTime("2 years ago", end)
	require.True(t, ok)
	assert.True(t, end.AddDate(0, 0, -730).Equal(got))
}

func TestParseRelativeTimeUnparseable(t *testing.T) {
	for _, phrase := range []string{"", "yesterday", "Just now", "3 Days ago", "a day ago", "in 3 days", "3 fortnights ago"} {
		_, ok := util.ParseRelativeTime(phrase, ref)
		assert.False(t, ok, phrase)
		assert.Equal(t, "", util.NormalizePostedAt(phrase, ref), phrase)
	}
}

func TestNormalizePostedAtFormat(t *testing.T) {
	local := ref.In(time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "2024-03-10T12:00:00+0000", util.NormalizePostedAt("5 days ago", local))
}

func TestParseRelativeTimeLargeCountsStayInThePast(t *testing.T) {
	cases := []struct {
		phrase string
		want   time.Time
	}{
		{"300 years ago", ref.AddDate(0, 0, -300*365)},
		{"120000 days ago", ref.AddDate(0, 0, -120000)},
		{"20000 weeks ago", ref.AddDate(0, 0, -20000*7)},
	}
	for _, tc := range cases {
		t.Run(tc.phrase, func(t *testing.T) {
			got, ok := util.ParseRelativeTime(tc.phrase, ref)
			require.True(t, ok)
			assert.True(t, got.Before(ref), "got %s", got)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}

	// counts that do not fit the arithmetic are unparseable, never future
	for _, phrase := range []string{
		"99999999999 minutes ago",
		"9999999999999 hours ago",
		"9999999999 years ago",
		"99999999999999999999 days ago",
	} {
		got, ok := util.ParseRelativeTime(phrase, ref)
		assert.False(t, ok, phrase)
		assert.True(t, got.IsZero(), phrase)
	}
}

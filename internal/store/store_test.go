package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape/util"
	"jobhunt-scout/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func posted(ago time.Duration) *string {
	return domain.Str(time.Now().UTC().Add(-ago).Format(domain.PostedAtLayout))
}

func TestUpsertIDsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	added, err := db.UpsertIDs(ctx, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	before, err := db.GetJob(ctx, 7)
	require.NoError(t, err)

	added, err = db.UpsertIDs(ctx, []int64{7})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	after, err := db.GetJob(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	c, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Total)
	assert.Equal(t, 0, c.Complete)
}

func TestRediscoveryKeepsDetails(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.UpsertIDs(ctx, []int64{1})
	require.NoError(t, err)
	require.NoError(t, db.UpsertDetails(ctx, domain.Job{
		ID:      1,
		Company: domain.Str("Acme"),
		Title:   domain.Str("Backend Engineer"),
	}))

	_, err = db.UpsertIDs(ctx, []int64{1, 2})
	require.NoError(t, err)

	j, err := db.GetJob(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Acme", domain.Deref(j.Company))
	assert.Equal(t, "Backend Engineer", domain.Deref(j.Title))
	assert.True(t, j.Complete())
}

func TestUpsertDetailsPreservesApplied(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.UpsertIDs(ctx, []int64{5})
	require.NoError(t, err)
	changed, err := db.MarkApplied(ctx, 5)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, db.UpsertDetails(ctx, domain.Job{ID: 5, Company: domain.Str("Acme"), ScrapeDate: domain.Str("2024-03-15")}))

	j, err := db.GetJob(ctx, 5)
	require.NoError(t, err)
	assert.True(t, j.Applied)
	assert.Equal(t, "2024-03-15", domain.Deref(j.ScrapeDate))
	assert.Nil(t, j.Sector)
}

func TestIncompleteIDsOrderAndMonotonicity(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.UpsertIDs(ctx, []int64{30, 10})
	require.NoError(t, err)
	_, err = db.UpsertIDs(ctx, []int64{20})
	require.NoError(t, err)

	ids, err := db.IncompleteIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20}, ids)

	require.NoError(t, db.UpsertDetails(ctx, domain.Job{ID: 10, Company: domain.Str("Acme")}))
	// empty company does not count as visited
	require.NoError(t, db.UpsertDetails(ctx, domain.Job{ID: 20, Company: domain.Str("")}))

	ids, err = db.IncompleteIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20}, ids)
}

func TestMarkApplied(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.UpsertIDs(ctx, []int64{9})
	require.NoError(t, err)

	changed, err := db.MarkApplied(ctx, 9)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = db.MarkApplied(ctx, 9)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = db.MarkApplied(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = db.GetJob(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetLanguages(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.UpsertDetails(ctx, domain.Job{ID: 1, Description: domain.Str("hello"), Language: domain.Str("de")}))
	require.NoError(t, db.UpsertDetails(ctx, domain.Job{ID: 2, Description: domain.Str("olá")}))
	_, err := db.UpsertIDs(ctx, []int64{3})
	require.NoError(t, err)

	descs, err := db.Descriptions(ctx)
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, store.Description{ID: 1, Text: "hello"}, descs[0])

	require.NoError(t, db.SetLanguages(ctx, map[int64]*string{1: domain.Str("en"), 2: nil}))

	j, err := db.GetJob(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "en", domain.Deref(j.Language))
	j, err = db.GetJob(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, j.Language)
}

func reviewQuery() store.ReviewQuery {
	return store.ReviewQuery{
		Languages:       []string{"en", "pt"},
		Since:           time.Now().Add(-30 * 24 * time.Hour),
		WorkModes:       []string{"Remote"},
		ExcludedLevels:  []string{"Director", "Entry level"},
		ExcludedSectors: []string{"Staffing and Recruiting"},
		ExcludedTitle:   "fullstack",
		ExcludedFit:     "Stand out",
	}
}

func candidate(id int64, ago time.Duration) domain.Job {
	return domain.Job{
		ID:             id,
		WorkMode:       domain.Str("Remote"),
		EmploymentType: domain.Str("Full-time"),
		Level:          domain.Str("Mid-Senior level"),
		Language:       domain.Str("en"),
		Company:        domain.Str("Acme"),
		Title:          domain.Str("Backend Engineer"),
		PostedAt:       posted(ago),
		Fit:            domain.Str("Your profile matches"),
		Sector:         domain.Str("Software Development"),
	}
}

func TestListReviewFilters(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	older := candidate(1, 10*24*time.Hour)
	older.WorkMode = nil
	older.Language = domain.Str("pt")
	newer := candidate(2, 2*time.Hour)
	newer.Fit = nil

	fixtures := []domain.Job{older, newer}

	stale := candidate(10, 45*24*time.Hour)
	fixtures = append(fixtures, stale)

	german := candidate(11, time.Hour)
	german.Language = domain.Str("de")
	fixtures = append(fixtures, german)

	onsite := candidate(12, time.Hour)
	onsite.WorkMode = domain.Str("On-site")
	fixtures = append(fixtures, onsite)

	director := candidate(13, time.Hour)
	director.Level = domain.Str("Director")
	fixtures = append(fixtures, director)

	staffing := candidate(14, time.Hour)
	staffing.Sector = domain.Str("Staffing and Recruiting")
	fixtures = append(fixtures, staffing)

	fullstack := candidate(15, time.Hour)
	fullstack.Title = domain.Str("Senior fullstack Developer")
	fixtures = append(fixtures, fullstack)

	standOut := candidate(16, time.Hour)
	standOut.Fit = domain.Str("Stand out from other applicants")
	fixtures = append(fixtures, standOut)

	noType := candidate(17, time.Hour)
	noType.EmploymentType = nil
	fixtures = append(fixtures, noType)

	applied := candidate(18, time.Hour)
	fixtures = append(fixtures, applied)

	// title check is case-sensitive, so this one passes
	capitalized := candidate(3, 5*24*time.Hour)
	capitalized.Title = domain.Str("Fullstack Engineer")
	fixtures = append(fixtures, capitalized)

	for _, j := range fixtures {
		require.NoError(t, db.UpsertDetails(ctx, j))
	}
	_, err := db.MarkApplied(ctx, 18)
	require.NoError(t, err)

	got, err := db.ListReview(ctx, reviewQuery())
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, j := range got {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)

	// re-running is side-effect free
	again, err := db.ListReview(ctx, reviewQuery())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestListReviewEmptyLanguagesMatchesNothing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.UpsertDetails(ctx, candidate(1, time.Hour)))

	q := reviewQuery()
	q.Languages = nil
	got, err := db.ListReview(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, got)

	q = reviewQuery()
	q.Limit = 1
	require.NoError(t, db.UpsertDetails(ctx, candidate(2, 2*time.Hour)))
	got, err = db.ListReview(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestListReviewSinceMatchesNormalizedPostedAt(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	j := candidate(1, 0)
	j.PostedAt = domain.Str(util.NormalizePostedAt("3 days ago", now))
	require.NoError(t, db.UpsertDetails(ctx, j))

	// Since is formatted in UTC whatever zone the caller used
	q := reviewQuery()
	q.Since = now.In(time.FixedZone("IST", 5*3600+1800)).AddDate(0, 0, -3)
	got, err := db.ListReview(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)

	q.Since = q.Since.Add(time.Second)
	got, err = db.ListReview(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	start := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.RecordRun(ctx, store.Run{ID: "a", StartedAt: start, Keywords: "go"}))
	require.NoError(t, db.RecordRun(ctx, store.Run{ID: "b", StartedAt: start.Add(time.Hour)}))
	require.NoError(t, db.RecordRun(ctx, store.Run{
		ID:         "a",
		StartedAt:  start,
		FinishedAt: start.Add(5 * time.Minute),
		Keywords:   "go",
		Pages:      2,
		Discovered: 40,
		Detailed:   38,
		Failed:     2,
	}))

	runs, err := db.LastRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.True(t, runs[0].FinishedAt.IsZero())
	assert.Equal(t, "a", runs[1].ID)
	assert.Equal(t, 38, runs[1].Detailed)
	assert.Equal(t, start.Add(5*time.Minute), runs[1].FinishedAt)
}

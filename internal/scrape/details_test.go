package scrape_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape"
	"jobhunt-scout/internal/store"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

const chip = `<span class="job-details-jobs-unified-top-card__job-insight-view-model-secondary">%s
  <span class="visually-hidden">Matches your job preferences</span>
</span>`

func chips(vals ...string) string {
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(strings.Replace(chip, "%s", v, 1))
	}
	return b.String()
}

func detailPage(insights string) string {
	return `<html><body>
<div class="t-24 job-details-jobs-unified-top-card__job-title">
  <h1>Senior Go Engineer</h1>
</div>
<div class="job-details-jobs-unified-top-card__company-name">
  <a href="/company/acme">Acme Corp</a>
</div>
<div class="job-details-jobs-unified-top-card__tertiary-description">
  <span>Lisbon, Portugal</span> · <span>Reposted 3 days ago</span> · <span>87 applicants</span>
</div>
<ul>
  <li class="job-details-jobs-unified-top-card__job-insight">` + insights + `</li>
  <li class="job-details-jobs-unified-top-card__job-insight"><span>51-200 employees · Software Development</span></li>
</ul>
<div class="display-flex flex-row align-items-center mt4">
  Your profile matches several of the required qualifications
</div>
<div class="jobs-box__html-content jobs-description-content__text t-14 t-normal jobs-description-content__text--stretch">
  About the job. We build distributed systems in Go.
</div>
</body></html>`
}

func TestExtractJobThreeChips(t *testing.T) {
	page := detailPage(chips("Remote", "Full-time", "Mid-Senior level"))
	j := scrape.ExtractJob(101, page, fixedNow, fakeClassifier{}, nil)

	assert.Equal(t, int64(101), j.ID)
	assert.Equal(t, "Remote", domain.Deref(j.WorkMode))
	assert.Equal(t, "Full-time", domain.Deref(j.EmploymentType))
	assert.Equal(t, "Mid-Senior level", domain.Deref(j.Level))
	assert.Equal(t, "Acme Corp", domain.Deref(j.Company))
	assert.Equal(t, "Senior Go Engineer", domain.Deref(j.Title))
	assert.Equal(t, "Lisbon, Portugal", domain.Deref(j.Location))
	assert.Equal(t, "Reposted 3 days ago", domain.Deref(j.PostedAgo))
	assert.Equal(t, "2024-03-12T12:00:00+0000", domain.Deref(j.PostedAt))
	assert.Equal(t, "87 applicants", domain.Deref(j.Applicants))
	assert.Equal(t, "Your profile matches several of the required qualifications", domain.Deref(j.Fit))
	assert.Equal(t, "51-200 employees", domain.Deref(j.EmployerSize))
	assert.Equal(t, "Software Development", domain.Deref(j.Sector))
	assert.Equal(t, "About the job. We build distributed systems in Go.", domain.Deref(j.Description))
	assert.Equal(t, "en", domain.Deref(j.Language))
	assert.Equal(t, "2024-03-15", domain.Deref(j.ScrapeDate))
	assert.True(t, j.Complete())
}

func TestExtractJobAccentLabelFallback(t *testing.T) {
	accent := `<span class="ui-label ui-label--accent-3"><span>Hybrid</span>
</span>`

	j := scrape.ExtractJob(1, detailPage(accent+chips("Full-time", "Associate")), fixedNow, nil, nil)
	assert.Equal(t, "Hybrid", domain.Deref(j.WorkMode))
	assert.Equal(t, "Full-time", domain.Deref(j.EmploymentType))
	assert.Equal(t, "Associate", domain.Deref(j.Level))
	assert.Nil(t, j.Language, "no classifier, no language")

	j = scrape.ExtractJob(1, detailPage(accent+chips("Contract")), fixedNow, nil, nil)
	assert.Equal(t, "Hybrid", domain.Deref(j.WorkMode))
	assert.Equal(t, "Contract", domain.Deref(j.EmploymentType))
	assert.Nil(t, j.Level)

	j = scrape.ExtractJob(1, detailPage(""), fixedNow, nil, nil)
	assert.Nil(t, j.WorkMode)
	assert.Nil(t, j.EmploymentType)
	assert.Nil(t, j.Level)
	assert.Equal(t, "Acme Corp", domain.Deref(j.Company), "other fields unaffected")
}

func TestExtractJobPartialPage(t *testing.T) {
	page := `<html><body>
<div class="job-details-jobs-unified-top-card__tertiary-description"><span>Remote</span> · <span>just now</span></div>
<ul>
  <li class="job-details-jobs-unified-top-card__job-insight">x</li>
  <li class="job-details-jobs-unified-top-card__job-insight">10,001+ employees</li>
</ul>
</body></html>`

	j := scrape.ExtractJob(7, page, fixedNow, fakeClassifier{}, nil)
	assert.Nil(t, j.Company)
	assert.Nil(t, j.Title)
	assert.Nil(t, j.Description)
	assert.Nil(t, j.Language)
	assert.Equal(t, "Remote", domain.Deref(j.Location))
	assert.Equal(t, "just now", domain.Deref(j.PostedAgo))
	assert.Nil(t, j.PostedAt, "unparseable time stays unset")
	assert.Nil(t, j.Applicants)
	assert.Equal(t, "10,001+ employees", domain.Deref(j.EmployerSize))
	assert.Nil(t, j.Sector)
	assert.False(t, j.Complete())
}

type failingClassifier struct{}

func (failingClassifier) Classify(string) (string, float64, error) {
	return "", 0, errors.New("no model")
}

func TestExtractJobClassifierFailureStoresNull(t *testing.T) {
	j := scrape.ExtractJob(1, detailPage(""), fixedNow, failingClassifier{}, nil)
	assert.NotNil(t, j.Description)
	assert.Nil(t, j.Language)
}

type panickyClassifier struct{}

func (panickyClassifier) Classify(string) (string, float64, error) {
	panic("boom")
}

func TestExtractJobFieldPanicIsIsolated(t *testing.T) {
	j := scrape.ExtractJob(1, detailPage(""), fixedNow, panickyClassifier{}, nil)
	assert.Nil(t, j.Language)
	assert.Equal(t, "Acme Corp", domain.Deref(j.Company))
	assert.Equal(t, "Software Development", domain.Deref(j.Sector))
}

func newTestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestPipeline(s *fakeSession, db *store.DB) *scrape.Pipeline {
	rec := &sleepRecorder{}
	policy := testPolicy(s, rec)
	return &scrape.Pipeline{
		Discoverer: &scrape.Discoverer{
			Session: s,
			Store:   db,
			BaseURL: testBase,
			Sleep:   rec.Sleep,
		},
		Details: &scrape.DetailStage{
			Policy:     policy,
			Store:      db,
			Classifier: fakeClassifier{},
			BaseURL:    testBase,
			Now:        func() time.Time { return fixedNow },
		},
		Runs: db,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)

	s := newFakeSession()
	s.serve(scrape.SearchURL(testBase, testParams, 0), searchPage("3 results", 101, 102, 103))
	s.serve(scrape.DetailURL(testBase, 101), detailPage(chips("Remote", "Full-time", "Mid-Senior level")))
	s.serve(scrape.DetailURL(testBase, 102), `<html><body><main>Something went wrong</main></body></html>`)
	s.navErr[scrape.DetailURL(testBase, 103)] = errors.New("net::ERR_INTERNET_DISCONNECTED")

	p := newTestPipeline(s, db)
	res, err := p.Run(ctx, testParams, scrape.StageAll)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Discover.Added)
	assert.Equal(t, 3, res.Details.Queued)
	assert.Equal(t, 2, res.Details.Saved)
	assert.Equal(t, 1, res.Details.Failed)

	j101, err := db.GetJob(ctx, 101)
	require.NoError(t, err)
	assert.True(t, j101.Complete())
	assert.Equal(t, "Senior Go Engineer", domain.Deref(j101.Title))

	j102, err := db.GetJob(ctx, 102)
	require.NoError(t, err)
	assert.Nil(t, j102.Company)
	assert.Equal(t, "2024-03-15", domain.Deref(j102.ScrapeDate))

	j103, err := db.GetJob(ctx, 103)
	require.NoError(t, err)
	assert.Nil(t, j103.Company)
	assert.Nil(t, j103.ScrapeDate)

	ids, err := db.IncompleteIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 103}, ids)

	runs, err := db.LastRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].Detailed)
	assert.Equal(t, 1, runs[0].Failed)
	assert.False(t, runs[0].FinishedAt.IsZero())

	status := p.Status()
	assert.False(t, status.Running)
	assert.Equal(t, res.RunID, status.RunID)
	assert.Empty(t, status.LastError)
}

func TestPipelineNeverRefetchesCompleteJobs(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)

	s := newFakeSession()
	s.serve(scrape.SearchURL(testBase, testParams, 0), searchPage("2 results", 101, 102))
	s.serve(scrape.DetailURL(testBase, 101), detailPage(chips("Remote", "Full-time", "Mid-Senior level")))
	s.serve(scrape.DetailURL(testBase, 102), `<html><body></body></html>`)

	p := newTestPipeline(s, db)
	_, err := p.Run(ctx, testParams, scrape.StageAll)
	require.NoError(t, err)

	before := len(s.navigations())
	res, err := p.Run(ctx, testParams, scrape.StageDetails)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Details.Queued)

	for _, u := range s.navigations()[before:] {
		assert.NotEqual(t, scrape.DetailURL(testBase, 101), u)
	}
}

func TestPipelineCancelledRunIsRecorded(t *testing.T) {
	db := newTestStore(t)
	s := newFakeSession()
	s.serve(scrape.SearchURL(testBase, testParams, 0), searchPage("1 results", 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(s, db)
	_, err := p.Run(ctx, testParams, scrape.StageAll)
	assert.ErrorIs(t, err, context.Canceled)

	runs, err := db.LastRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].LastError)
	assert.NotEmpty(t, p.Status().LastError)
}

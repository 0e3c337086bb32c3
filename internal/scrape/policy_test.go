package scrape_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-scout/internal/scrape"
)

const (
	readyPage       = `<html><body><span class="ui-label ui-label--accent-3">Remote</span></body></html>`
	notReadyPage    = `<html><body><p>loading</p></body></html>`
	rateLimitedPage = `<html><body><h1>Too Many Requests</h1></body></html>`
	testURL         = "https://jobs.test/jobs/view/1"
	jitter          = 150 * time.Millisecond
)

func testPolicy(s scrape.Session, rec *sleepRecorder) *scrape.FetchPolicy {
	p := scrape.NewFetchPolicy(s, nil)
	p.Sleep = rec.Sleep
	p.Jitter = func(_, _ time.Duration) time.Duration { return jitter }
	return p
}

func TestFetchReadyPage(t *testing.T) {
	s := newFakeSession()
	s.serve(testURL, readyPage)
	rec := &sleepRecorder{}

	src, err := testPolicy(s, rec).Fetch(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, readyPage, src)
	assert.Len(t, s.navigations(), 1)
	assert.Equal(t, []time.Duration{jitter}, rec.durations())
}

func TestFetchRateLimitedRetriesOnce(t *testing.T) {
	s := newFakeSession()
	s.serve(testURL, rateLimitedPage, readyPage)
	rec := &sleepRecorder{}

	src, err := testPolicy(s, rec).Fetch(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, readyPage, src)
	assert.Len(t, s.navigations(), 2)
	assert.Equal(t, []time.Duration{jitter, scrape.DefaultRateLimitCooldown}, rec.durations())
}

func TestFetchRateLimitedTwiceStillProceeds(t *testing.T) {
	s := newFakeSession()
	s.serve(testURL, rateLimitedPage)
	rec := &sleepRecorder{}

	src, err := testPolicy(s, rec).Fetch(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, rateLimitedPage, src)
	// one rate-limit retry plus one not-ready retry, never more
	assert.Len(t, s.navigations(), 3)
	assert.Contains(t, rec.durations(), scrape.DefaultRateLimitCooldown)
	assert.Contains(t, rec.durations(), scrape.DefaultNotReadyCooldown)
}

func TestFetchNotReadyReloadsOnceAndProceeds(t *testing.T) {
	s := newFakeSession()
	s.serve(testURL, notReadyPage)
	rec := &sleepRecorder{}

	p := testPolicy(s, rec)
	src, err := p.Fetch(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, notReadyPage, src)
	assert.Len(t, s.navigations(), 2)

	slept := rec.durations()
	assert.Equal(t, jitter, slept[0])
	assert.Equal(t, scrape.DefaultNotReadyCooldown, slept[len(slept)-1])
	// readiness polls: timeout / interval, with a sleep between each
	polls := int(scrape.DefaultReadyTimeout / scrape.DefaultPollInterval)
	assert.Len(t, slept, 1+(polls-1)+1)
}

func TestFetchNavigationFailure(t *testing.T) {
	s := newFakeSession()
	s.navErr[testURL] = errors.New("net::ERR_CONNECTION_RESET")
	rec := &sleepRecorder{}

	_, err := testPolicy(s, rec).Fetch(context.Background(), testURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, scrape.ErrNavigate)
	assert.Len(t, s.navigations(), 2)
}

func TestFetchCancelled(t *testing.T) {
	s := newFakeSession()
	s.serve(testURL, readyPage)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testPolicy(s, &sleepRecorder{}).Fetch(ctx, testURL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, scrape.Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, scrape.Sleep(context.Background(), 0))
}

package scrape

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/scrape/types"
	"jobhunt-scout/internal/store"
)

// RunRecorder persists run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, r store.Run) error
}

// Stage selects which parts of the pipeline a run executes.
type Stage uint8

const (
	StageDiscover Stage = 1 << iota
	StageDetails

	StageAll = StageDiscover | StageDetails
)

// Pipeline runs discovery then detail extraction over one shared session.
// Runs are strictly sequential; a second Run while one is in progress
// returns ErrBusy.
type Pipeline struct {
	Discoverer *Discoverer
	Details    *DetailStage
	Runs       RunRecorder
	Logger     *slog.Logger

	mu     sync.Mutex
	status types.ScrapeStatus
}

var ErrBusy = errors.New("scrape already running")

type Result struct {
	RunID    string
	Discover DiscoverStats
	Details  DetailStats
}

// Run executes the selected stages. Page, field and persistence failures
// are absorbed by the stages; the returned error is a context error or a
// failure to read the work queue.
func (p *Pipeline) Run(ctx context.Context, params domain.SearchParams, stages Stage) (Result, error) {
	if !p.begin() {
		return Result{}, ErrBusy
	}

	res := Result{RunID: uuid.NewString()}
	log := p.logger().With("run_id", res.RunID)
	started := time.Now().UTC()

	p.mu.Lock()
	p.status.RunID = res.RunID
	p.status.LastRunAt = started.Format(time.RFC3339)
	p.mu.Unlock()

	rec := store.Run{
		ID:        res.RunID,
		StartedAt: started,
		Keywords:  params.Keywords,
		Location:  params.Location,
	}
	p.record(ctx, log, rec)

	var err error
	if stages&StageDiscover != 0 && p.Discoverer != nil {
		d := *p.Discoverer
		d.Logger = log.With("component", "discover")
		res.Discover, err = d.Run(ctx, params)
		log.Info("discovery done", "pages", res.Discover.Pages, "found", res.Discover.Found, "added", res.Discover.Added)
	}
	if err == nil && stages&StageDetails != 0 && p.Details != nil {
		s := *p.Details
		s.Logger = log.With("component", "details")
		res.Details, err = s.Run(ctx)
		log.Info("details done", "saved", res.Details.Saved, "failed", res.Details.Failed)
	}

	rec.FinishedAt = time.Now().UTC()
	rec.Pages = res.Discover.Pages
	rec.Discovered = res.Discover.Added
	rec.Detailed = res.Details.Saved
	rec.Failed = res.Details.Failed
	if err != nil {
		rec.LastError = err.Error()
	}
	// the run context may already be cancelled; history is still written
	p.record(context.WithoutCancel(ctx), log, rec)

	p.finish(res, err)
	return res, err
}

func (p *Pipeline) record(ctx context.Context, log *slog.Logger, r store.Run) {
	if p.Runs == nil {
		return
	}
	if err := p.Runs.RecordRun(ctx, r); err != nil {
		log.Warn("record run", "err", err)
	}
}

func (p *Pipeline) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.Running {
		return false
	}
	p.status.Running = true
	return true
}

func (p *Pipeline) finish(res Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Running = false
	p.status.LastAdded = res.Discover.Added
	p.status.LastSaved = res.Details.Saved
	if err != nil {
		p.status.LastError = err.Error()
		return
	}
	p.status.LastError = ""
	p.status.LastOkAt = time.Now().UTC().Format(time.RFC3339)
}

// Status returns a snapshot of the current state.
func (p *Pipeline) Status() types.ScrapeStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

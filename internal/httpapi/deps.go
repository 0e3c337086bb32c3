package httpapi

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"jobhunt-scout/internal/config"
	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/events"
	"jobhunt-scout/internal/scrape/types"
	"jobhunt-scout/internal/store"
)

// Store is the slice of the record store the API serves.
type Store interface {
	ListReview(ctx context.Context, q store.ReviewQuery) ([]domain.Job, error)
	GetJob(ctx context.Context, id int64) (domain.Job, error)
	MarkApplied(ctx context.Context, id int64) (bool, error)
	Counts(ctx context.Context) (store.Counts, error)
	LastRuns(ctx context.Context, limit int) ([]store.Run, error)
	Checkpoint(ctx context.Context) error
}

type Deps struct {
	Store Store

	Hub *events.Hub

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Status reports the in-process pipeline, when one runs alongside.
	Status func() types.ScrapeStatus

	Logger *slog.Logger
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/store"
)

// LanguageStore is what Relabel needs from the record store.
type LanguageStore interface {
	Descriptions(ctx context.Context) ([]store.Description, error)
	SetLanguages(ctx context.Context, langs map[int64]*string) error
}

// Relabel re-detects the language of every stored description and writes
// all results in one transaction. Detection failures store NULL. It returns
// the number of rows updated.
func Relabel(ctx context.Context, s LanguageStore, c Classifier, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	descs, err := s.Descriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list descriptions: %w", err)
	}

	var (
		mu    sync.Mutex
		langs = make(map[int64]*string, len(descs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, d := range descs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var lang *string
			code, _, err := c.Classify(d.Text)
			if err != nil {
				log.Debug("detect language", "job_id", d.ID, "err", err)
			} else {
				lang = domain.Str(code)
			}
			mu.Lock()
			langs[d.ID] = lang
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := s.SetLanguages(ctx, langs); err != nil {
		return 0, err
	}
	log.Info("relabelled descriptions", "count", len(langs))
	return len(langs), nil
}

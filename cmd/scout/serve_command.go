package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"jobhunt-scout/internal/config"
	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/events"
	"jobhunt-scout/internal/httpapi"
	"jobhunt-scout/internal/scheduler"
	"jobhunt-scout/internal/scrape"
	"jobhunt-scout/internal/scrape/types"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var scrapeEvery time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review queue over a local HTTP API",
		Long: `serve exposes the store on a local HTTP API (health, review queue, job
details, marking applied, run history, config and an SSE event stream).
With --scrape-every it also runs discover and details on that interval
and pushes saved jobs to event subscribers.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.cfg
			if addr == "" {
				addr = cfg.App.HTTPAddr
			}
			return serve(cmd.Context(), ctx, addr, scrapeEvery)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default app.http_addr)")
	cmd.Flags().DurationVar(&scrapeEvery, "scrape-every", 0, "Also scrape on this interval (0 = never)")
	return cmd
}

func serve(ctx context.Context, c *commandContext, addr string, scrapeEvery time.Duration) error {
	log := c.logger().With("component", "serve")
	// POST /jobs/{id}/applied writes the store
	if err := c.lockDataDir(); err != nil {
		return err
	}
	db, err := c.openStore()
	if err != nil {
		return err
	}

	hub := events.NewHub()
	var cfgVal atomic.Value
	cfgVal.Store(*c.cfg)

	deps := httpapi.Deps{
		Store:       db,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: c.configPath,
		LoadCfg: func() (config.Config, error) {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return cfg, err
			}
			cfg, vr := config.NormalizeAndValidate(cfg)
			return cfg, vr.Err()
		},
		Logger: c.logger(),
	}

	bg, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	close(done)

	if scrapeEvery > 0 {
		params, err := c.searchParams(true)
		if err != nil {
			return err
		}
		sess, err := c.session(ctx)
		if err != nil {
			return err
		}
		p := c.newPipeline(sess, db)
		p.Details.OnSaved = func(j domain.Job) {
			hub.Emit(events.TypeJobSaved, events.JobRef{
				ID:      j.ID,
				Company: domain.Deref(j.Company),
				Title:   domain.Deref(j.Title),
			})
		}
		deps.Status = p.Status

		done = make(chan struct{})
		go func() {
			defer close(done)
			scheduler.Every(bg, scrapeEvery, "scrape", func(ctx context.Context) error {
				hub.Emit(events.TypeScrapeStarted, nil)
				res, err := p.Run(ctx, params, scrape.StageAll)
				hub.Emit(events.TypeScrapeDone, types.ScrapeStatus{
					RunID:     res.RunID,
					LastAdded: res.Discover.Added,
					LastSaved: res.Details.Saved,
				})
				return err
			}, c.logger())
		}()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(c.stdout, "serving on http://%s\n", addr)

	select {
	case err := <-errc:
		cancel()
		<-done
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer stop()
	err = srv.Shutdown(shutdownCtx)
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}

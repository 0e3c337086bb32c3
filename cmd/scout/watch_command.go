package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jobhunt-scout/internal/scheduler"
	"jobhunt-scout/internal/scrape"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run discover and details now and then again on an interval",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if every <= 0 {
				every = ctx.cfg.Watch.Every
			}
			if every <= 0 {
				return usagef("--every must be > 0")
			}
			params, err := ctx.searchParams(true)
			if err != nil {
				return err
			}
			if err := ctx.lockDataDir(); err != nil {
				return err
			}
			db, err := ctx.openStore()
			if err != nil {
				return err
			}
			sess, err := ctx.session(cmd.Context())
			if err != nil {
				return err
			}
			p := ctx.newPipeline(sess, db)

			scheduler.Every(cmd.Context(), every, "watch", func(runCtx context.Context) error {
				res, err := p.Run(runCtx, params, scrape.StageAll)
				if err != nil {
					return err
				}
				fmt.Fprintf(ctx.stdout, "%s run %s: %d new ids, %d details saved, %d failed\n",
					time.Now().Format(time.DateTime), res.RunID, res.Discover.Added, res.Details.Saved, res.Details.Failed)
				return nil
			}, ctx.logger())
			return nil
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "Interval between runs (default watch.every)")
	return cmd
}

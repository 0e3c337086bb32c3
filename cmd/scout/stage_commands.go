package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobhunt-scout/internal/scrape"
)

const stagesAll = scrape.StageAll

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Collect job ids for the search into the store",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, ctx, scrape.StageDiscover, false)
		},
	}
}

func newDetailsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "details",
		Short: "Fetch details for every stored job that has none yet",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, ctx, scrape.StageDetails, false)
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noReview bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, fetch details, then review (same as bare scout)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, ctx, stagesAll, !noReview)
		},
	}
	cmd.Flags().BoolVar(&noReview, "no-review", false, "Stop after detail extraction")
	return cmd
}

// runStages runs the selected pipeline stages over one browser session and
// optionally continues into the review loop on the same session.
func runStages(cmd *cobra.Command, ctx *commandContext, stages scrape.Stage, thenReview bool) error {
	params, err := ctx.searchParams(stages&scrape.StageDiscover != 0)
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

	res, err := ctx.newPipeline(sess, db).Run(cmd.Context(), params, stages)
	if err != nil {
		return err
	}
	if stages&scrape.StageDiscover != 0 {
		fmt.Fprintf(ctx.stdout, "discover: %d pages, %d ids seen, %d new\n",
			res.Discover.Pages, res.Discover.Found, res.Discover.Added)
	}
	if stages&scrape.StageDetails != 0 {
		fmt.Fprintf(ctx.stdout, "details: %d queued, %d saved, %d failed\n",
			res.Details.Queued, res.Details.Saved, res.Details.Failed)
	}

	if !thenReview {
		return nil
	}
	return reviewQueue(cmd, ctx, db, sess)
}

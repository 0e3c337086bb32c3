package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jobhunt-scout/internal/domain"
	"jobhunt-scout/internal/review"
	"jobhunt-scout/internal/scrape"
	"jobhunt-scout/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Walk the review queue and mark jobs applied",
		Long: `review prints each job worth applying to and waits for a line of input:
Enter (or anything else) marks the job applied, "s" skips it and "exit"
stops. Links are opened in the browser session unless --no-browser.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.lockDataDir(); err != nil {
				return err
			}
			db, err := ctx.openStore()
			if err != nil {
				return err
			}
			var sess scrape.Session
			if !noBrowser {
				if sess, err = ctx.session(cmd.Context()); err != nil {
					return err
				}
			}
			return reviewQueue(cmd, ctx, db, sess)
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Only print links, do not open them")
	return cmd
}

func reviewQueue(cmd *cobra.Command, ctx *commandContext, db *store.DB, sess scrape.Session) error {
	cfg := *ctx.cfg
	jobs, err := db.ListReview(cmd.Context(), cfg.ReviewPolicy().Query(time.Now()))
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(ctx.stdout, "review queue is empty")
		return nil
	}

	var opener review.Opener
	if sess != nil {
		opener = sess
	}
	loop := review.NewLoop(db, opener, cfg.App.BaseURL, ctx.logger().With("component", "review"))
	loop.In = ctx.stdin
	loop.Out = ctx.stdout

	sum, err := loop.Run(cmd.Context(), jobs)
	fmt.Fprintf(ctx.stdout, "reviewed %d of %d: %d applied, %d skipped\n", sum.Shown, len(jobs), sum.Marked, sum.Skipped)
	return err
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print the review queue without changing anything",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openStore()
			if err != nil {
				return err
			}
			cfg := *ctx.cfg
			q := cfg.ReviewPolicy().Query(time.Now())
			q.Limit = limit
			jobs, err := db.ListReview(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(ctx.stdout, "review queue is empty")
				return nil
			}
			fmt.Fprintln(ctx.stdout, renderQueue(jobs, cfg.App.BaseURL))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n jobs (0 = all)")
	return cmd
}

func renderQueue(jobs []domain.Job, baseURL string) string {
	headers := []string{"ID", "Posted", "Company", "Title", "Level", "Mode", "Lang", "Link"}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(j.ID, 10),
			postedDay(domain.Deref(j.PostedAt)),
			domain.Deref(j.Company),
			domain.Deref(j.Title),
			domain.Deref(j.Level),
			domain.Deref(j.WorkMode),
			domain.Deref(j.Language),
			scrape.DetailURL(baseURL, j.ID),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}

func postedDay(ts string) string {
	if len(ts) >= len("2006-01-02") {
		return ts[:len("2006-01-02")]
	}
	return ts
}

func newRelabelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "relabel",
		Short: "Re-detect the language of every stored description",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.lockDataDir(); err != nil {
				return err
			}
			db, err := ctx.openStore()
			if err != nil {
				return err
			}
			n, err := scrape.Relabel(cmd.Context(), db, classifier, ctx.logger().With("component", "relabel"))
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.stdout, "relabelled %d jobs\n", n)
			return nil
		},
	}
}

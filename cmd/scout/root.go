package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scout",
		Short: "Collect job postings, enrich them and walk the review queue",
		Long: `scout discovers job ids for a search, fetches the details of every new
posting into a local sqlite database and then walks the postings worth
applying to one at a time.

Without a subcommand it runs discover, details and review in that order.`,
		Example:       "  scout --keywords \"golang developer\" --location Portugal --only_remote true",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, ctx, stagesAll, true)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configPath, "config", "c", defaultConfigPath, "Configuration file path")
	pf.StringVar(&ctx.flags.keywords, "keywords", "", "Search keywords (overrides search.keywords)")
	pf.StringVar(&ctx.flags.location, "location", "", "Search location (overrides search.location)")
	pf.StringVar(&ctx.flags.onlyRemote, "only_remote", "", "Only remote postings: true/false")
	pf.StringVar(&ctx.flags.moreRecents, "more_recents", "", "Newest postings first, last 30 days: true/false")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(newDiscoverCommand(ctx))
	rootCmd.AddCommand(newDetailsCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newReviewCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newRelabelCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newSecretsCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// parseBoolish accepts true/false, yes/no and 1/0 in any case.
func parseBoolish(name, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes":
		return true, nil
	case "0", "f", "false", "n", "no":
		return false, nil
	}
	return false, usagef("invalid value %q for --%s: want true or false", v, name)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%q takes no arguments, got %q", cmd.CommandPath(), args[0])
	}
	return nil
}

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobhunt-scout/internal/secrets"
)

func newSecretsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage the site password in the OS keyring",
	}
	cmd.AddCommand(newSetPasswordCommand(ctx))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete-password",
		Short: "Remove the stored site password",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeletePassword(ctx.cfg.Credentials.User); err != nil {
				return err
			}
			fmt.Fprintln(ctx.stdout, "password removed")
			return nil
		},
	})
	return cmd
}

func newSetPasswordCommand(ctx *commandContext) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Store the password for credentials.user (read from stdin unless --password)",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := ctx.cfg.Credentials.User
			if user == "" {
				return usagef("credentials.user is not set in %s", ctx.configPath)
			}
			if password == "" {
				fmt.Fprintf(ctx.stderr, "password for %s: ", user)
				sc := bufio.NewScanner(ctx.stdin)
				if sc.Scan() {
					password = strings.TrimRight(sc.Text(), "\r\n")
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			if password == "" {
				return usagef("empty password")
			}
			if err := secrets.SetPassword(user, password); err != nil {
				return err
			}
			fmt.Fprintf(ctx.stdout, "password stored for %s\n", user)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to store")
	return cmd
}

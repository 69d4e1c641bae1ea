package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	applog "lexdash/internal/log"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and revoke API tokens",
	}

	var (
		user        string
		description string
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for a user and print it once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			res, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeBackend(res)

			token, err := res.Tokens.Issue(cmd.Context(), strings.TrimSpace(user), description)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			a.logger.Info("Issued API token", applog.FieldUserID, user)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&user, "user", "", "user ID the token authenticates")
	issue.Flags().StringVar(&description, "description", "", "free-form note stored with the token")

	var revokeUser string
	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke every active token of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(revokeUser) == "" {
				return errors.New("--user is required")
			}
			res, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeBackend(res)

			n, err := res.Tokens.Revoke(cmd.Context(), strings.TrimSpace(revokeUser))
			if err != nil {
				return fmt.Errorf("revoke tokens: %w", err)
			}
			a.logger.Info("Revoked API tokens", applog.FieldUserID, revokeUser, "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %d token(s)\n", n)
			return nil
		},
	}
	revoke.Flags().StringVar(&revokeUser, "user", "", "user whose tokens are revoked")

	cmd.AddCommand(issue, revoke)
	return cmd
}

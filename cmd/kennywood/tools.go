package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/lib/email"
	"github.com/deppfellow/kennywood-api/internal/middleware"
)

// newTokenCmd mints a bearer token for local use with the jwt auth provider.
func newTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print an HS256 bearer token for a customer user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.Provider != config.AuthProviderJWT {
				return fmt.Errorf("auth provider is %q, tokens are only issued for %q", cfg.Auth.Provider, config.AuthProviderJWT)
			}

			token, err := middleware.GenerateToken(args[0], ttl, cfg.Auth)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func newEmailPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email-preview <template>",
		Short: "Render an email template with sample data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := email.Preview(email.Template(args[0]))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
}

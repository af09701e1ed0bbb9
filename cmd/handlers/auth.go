package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"chefpress/internal/publish"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize chefpress to publish to your Blogger blog",
		Long: `Start the OAuth consent flow for the Blogger API. Open the printed URL,
grant access, and the token is written to blogger.token_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			if err := cfg.ValidatePublishing(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			store := publish.NewTokenStore(cfg.Blogger.TokenFile)
			_, err := publish.Authorize(cmd.Context(), publish.OAuthConfig(cfg.Blogger), store, func(authURL string) {
				_, _ = fmt.Fprintf(out, "Open this URL in your browser to authorize chefpress:\n\n  %s\n\nWaiting for the redirect...\n", authURL)
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Token saved to %s\n", cfg.Blogger.TokenFile)
			return nil
		},
	}
}

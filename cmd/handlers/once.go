package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOnceCmd(a *app) *cobra.Command {
	var category string
	var draft bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Generate and publish a single recipe",
		Long: `Run one cycle: pick a category (the least used one unless --category is
given), generate a recipe, validate it, optimize its SEO metadata, publish it
and record it in the tracking file. The exit status is non-zero if any stage
fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if draft {
				a.config.Publishing.DraftMode = true
			}

			p, err := buildPipeline(cmd.Context(), a.config, nil)
			if err != nil {
				return err
			}

			res, err := p.RunOnce(cmd.Context(), category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Published %q (%s)\n", res.Recipe.Title, res.Category)
			_, _ = fmt.Fprintf(out, "SEO score: %.1f/100 (%s)\n", res.Analysis.Score, res.Analysis.Grade)
			_, _ = fmt.Fprintf(out, "URL: %s\n", res.Published.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category to generate (default: least used)")
	cmd.Flags().BoolVar(&draft, "draft", false, "publish as a draft")
	return cmd
}

package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"chefpress/internal/store"
	"chefpress/internal/tui"
)

func newReportCmd(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show publishing statistics from the tracking file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracking, err := store.Read(a.config.TrackingPath())
			if err != nil {
				return err
			}

			if interactive {
				return tui.Run(tracking.Statistics(), tracking.Entries())
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tui.Report(tracking.Statistics(), tracking.Entries()))
			return err
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse posts in a terminal UI")
	return cmd
}

package handlers

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chefpress/internal/logger"
	"chefpress/internal/metrics"
	"chefpress/internal/pipeline"
)

func newRunCmd(a *app) *cobra.Command {
	var draft bool
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Publish continuously on a schedule",
		Long: `Run cycles continuously, sleeping the configured interval (with jitter)
between them, until the target number of successful cycles is reached.
The target is ceil(min_fetch_window_hours / interval_hours * safety_factor)
clamped to [min_articles, max_articles].

An interrupt stops the loop once the current cycle has finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config
			if draft {
				cfg.Publishing.DraftMode = true
			}
			if metricsAddr == "" {
				metricsAddr = cfg.Metrics.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var rec *metrics.Recorder
			if metricsAddr != "" {
				rec = metrics.New()
				metricsCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
				defer cancel()
				go func() {
					if err := rec.Serve(metricsCtx, metricsAddr); err != nil {
						logger.Error("Metrics server failed", err, "addr", metricsAddr)
					}
				}()
			}

			p, err := buildPipeline(ctx, cfg, rec)
			if err != nil {
				return err
			}

			s := pipeline.NewScheduler(p, pipeline.SchedulerConfigFromApp(cfg), pipeline.WithSchedulerMetrics(rec))
			_, err = s.Run(ctx)
			return err
		},
	}

	cmd.Flags().BoolVar(&draft, "draft", false, "publish as drafts")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	return cmd
}

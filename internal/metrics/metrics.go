// Package metrics exposes prometheus collectors for continuous mode.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chefpress/internal/logger"
)

// Cycle outcomes.
const (
	OutcomePublished        = "published"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeValidationFailed = "validation_failed"
	OutcomePublishFailed    = "publish_failed"
	OutcomeError            = "error"
)

// Recorder holds the collectors. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	retries       *prometheus.CounterVec
	seoScore      prometheus.Histogram
	target        prometheus.Gauge
	completed     prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chefpress_cycles_total",
				Help: "Total number of publishing cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chefpress_cycle_duration_seconds",
				Help:    "Duration of a publishing cycle in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		retries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chefpress_generation_retries_total",
				Help: "Total number of generation retries by error class",
			},
			[]string{"class"},
		),
		seoScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chefpress_seo_score",
				Help:    "SEO score of published recipes",
				Buckets: []float64{40, 55, 70, 85, 100},
			},
		),
		target: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chefpress_target_articles",
				Help: "Number of successful cycles continuous mode aims for",
			},
		),
		completed: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chefpress_completed_articles",
				Help: "Number of successful cycles so far in continuous mode",
			},
		),
	}
}

// ObserveCycle records one finished cycle.
func (r *Recorder) ObserveCycle(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(outcome).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// ObserveRetry records one scheduled generation retry.
func (r *Recorder) ObserveRetry(class string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(class).Inc()
}

// ObserveSEOScore records the score of a published recipe.
func (r *Recorder) ObserveSEOScore(score float64) {
	if r == nil {
		return
	}
	r.seoScore.Observe(score)
}

// SetProgress records the continuous mode target and how far along it is.
func (r *Recorder) SetProgress(completed, target int) {
	if r == nil {
		return
	}
	r.completed.Set(float64(completed))
	r.target.Set(float64(target))
}

// Handler serves the collectors in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

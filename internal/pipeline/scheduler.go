package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"chefpress/internal/config"
	"chefpress/internal/llm"
	"chefpress/internal/logger"
	"chefpress/internal/metrics"
)

// errPanic marks a cycle that panicked.
var errPanic = errors.New("cycle panicked")

// ComputeTargetCount returns ceil(minWindowHours / intervalHours * safety)
// clamped to [minLimit, maxLimit]. Values within float noise of an integer
// are treated as that integer.
func ComputeTargetCount(minWindowHours, intervalHours, safety float64, minLimit, maxLimit int) int {
	n := minLimit
	if intervalHours > 0 {
		raw := minWindowHours / intervalHours * safety
		n = int(math.Ceil(raw - 1e-9))
	}
	if n < minLimit {
		n = minLimit
	}
	if maxLimit >= minLimit && n > maxLimit {
		n = maxLimit
	}
	return n
}

// SchedulerConfig controls continuous mode.
type SchedulerConfig struct {
	Interval time.Duration
	Jitter   float64 // sleep is Interval * U[1-Jitter, 1+Jitter]
	Cooldown time.Duration
	Target   int // successful cycles to run before stopping
}

// SchedulerConfigFromApp derives the schedule from the publishing section.
func SchedulerConfigFromApp(cfg *config.Config) SchedulerConfig {
	p := cfg.Publishing
	return SchedulerConfig{
		Interval: time.Duration(p.IntervalHours * float64(time.Hour)),
		Jitter:   p.Jitter,
		Cooldown: p.Cooldown,
		Target:   ComputeTargetCount(p.MinFetchWindowHours, p.IntervalHours, p.SafetyFactor, p.MinArticles, p.MaxArticles),
	}
}

// Summary reports what a Run did.
type Summary struct {
	Cycles      int
	Succeeded   int
	Failed      int
	Target      int
	Interrupted bool
}

// Scheduler repeats cycles until the target is reached or it is interrupted.
type Scheduler struct {
	runner  CycleRunner
	config  SchedulerConfig
	metrics *metrics.Recorder
	rng     *rand.Rand
	sleep   func(ctx context.Context, d time.Duration) error
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerSleep replaces the wait between cycles.
func WithSchedulerSleep(fn func(ctx context.Context, d time.Duration) error) SchedulerOption {
	return func(s *Scheduler) { s.sleep = fn }
}

// WithSchedulerRand sets the jitter source.
func WithSchedulerRand(rng *rand.Rand) SchedulerOption {
	return func(s *Scheduler) { s.rng = rng }
}

// WithSchedulerMetrics enables progress metrics.
func WithSchedulerMetrics(m *metrics.Recorder) SchedulerOption {
	return func(s *Scheduler) { s.metrics = m }
}

// NewScheduler creates a Scheduler for runner.
func NewScheduler(runner CycleRunner, cfg SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner: runner,
		config: cfg,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep:  sleepContext,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes cycles until Target successes or ctx is cancelled. Each cycle
// runs to completion even if ctx is cancelled meanwhile. Failed cycles are
// followed by the normal interval, except panics and unclassified errors which
// wait Cooldown. An authentication failure stops the loop and is returned.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Target: s.config.Target}
	logger.Info("Continuous mode started",
		"interval", s.config.Interval.String(), "target", sum.Target, "cooldown", s.config.Cooldown.String())
	s.metrics.SetProgress(0, sum.Target)

	for sum.Succeeded < sum.Target {
		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}

		err := s.runCycle(context.WithoutCancel(ctx))
		sum.Cycles++
		wait := s.nextInterval()

		switch {
		case err == nil:
			sum.Succeeded++
		case errors.Is(err, llm.ErrAuthentication):
			sum.Failed++
			logger.Error("Stopping continuous mode on authentication failure", err)
			return sum, err
		case expectedFailure(err):
			sum.Failed++
		default:
			sum.Failed++
			wait = s.config.Cooldown
			logger.Error("Unexpected cycle failure, cooling down", err, "cooldown", wait.String())
		}
		s.metrics.SetProgress(sum.Succeeded, sum.Target)

		if sum.Succeeded >= sum.Target {
			break
		}
		logger.Info("Sleeping until next cycle", "wait", wait.String(), "done", sum.Succeeded, "target", sum.Target)
		if err := s.sleep(ctx, wait); err != nil {
			sum.Interrupted = true
			break
		}
	}

	logger.Info("Continuous mode finished",
		"cycles", sum.Cycles, "succeeded", sum.Succeeded, "failed", sum.Failed, "interrupted", sum.Interrupted)
	return sum, nil
}

func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	_, err = s.runner.RunOnce(ctx, "")
	return err
}

func (s *Scheduler) nextInterval() time.Duration {
	j := math.Max(0, math.Min(1, s.config.Jitter))
	factor := 1 - j + 2*j*s.rng.Float64()
	return time.Duration(float64(s.config.Interval) * factor)
}

// expectedFailure reports failures that are part of normal operation and
// should not trigger the cooldown.
func expectedFailure(err error) bool {
	if errors.Is(err, errPanic) {
		return false
	}
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPublish) ||
		errors.Is(err, llm.ErrExhausted) ||
		errors.Is(err, llm.ErrParse) ||
		errors.Is(err, llm.ErrEmptyResponse) ||
		errors.Is(err, llm.ErrRateLimited)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

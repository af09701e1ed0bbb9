// Package pipeline sequences one publishing cycle and runs cycles on a
// schedule.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chefpress/internal/config"
	"chefpress/internal/core"
	"chefpress/internal/logger"
	"chefpress/internal/metrics"
	"chefpress/internal/publish"
	"chefpress/internal/quality"
	"chefpress/internal/seo"
)

var (
	// ErrGeneration wraps every failure of the generation stage.
	ErrGeneration = errors.New("generation failed")
	// ErrValidation is returned when a generated recipe fails the quality gate.
	ErrValidation = errors.New("recipe failed validation")
	// ErrPublish is returned when the blog rejects or fails the post.
	ErrPublish = errors.New("publish failed")
	// ErrRender is returned when the post HTML cannot be produced.
	ErrRender = errors.New("render failed")
)

// Config holds pipeline configuration
type Config struct {
	Categories []string
	Draft      bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return ConfigFromApp(config.Default())
}

// ConfigFromApp takes the pipeline settings from the application config.
func ConfigFromApp(cfg *config.Config) *Config {
	return &Config{
		Categories: cfg.Content.Categories,
		Draft:      cfg.Publishing.DraftMode,
	}
}

// CycleResult describes a completed cycle.
type CycleResult struct {
	CycleID    string
	Category   string
	Recipe     *core.Recipe
	Validation quality.Result
	Analysis   seo.Analysis
	Published  *publish.Published
	Draft      bool
	Duration   time.Duration
}

// Pipeline runs generate, validate, optimize, publish and track for one
// recipe at a time.
type Pipeline struct {
	generator RecipeGenerator
	validator RecipeValidator
	optimizer SEOOptimizer
	publisher Publisher
	tracker   Tracker
	renderer  Renderer
	metrics   *metrics.Recorder
	rng       *rand.Rand
	config    *Config
}

// RunOnce runs a single cycle. An empty category is chosen from the tracking
// history. Any failing stage ends the cycle; nothing done by earlier stages is
// rolled back. A tracking failure is logged and does not fail the cycle.
func (p *Pipeline) RunOnce(ctx context.Context, category string) (*CycleResult, error) {
	start := time.Now()
	res := &CycleResult{CycleID: uuid.NewString(), Draft: p.config.Draft}
	log := logger.Get().With().Str("cycle_id", res.CycleID).Logger()

	err := p.run(ctx, category, res, &log)
	res.Duration = time.Since(start)
	p.metrics.ObserveCycle(outcome(err), res.Duration)

	if err != nil {
		log.Error().Err(err).Str("category", res.Category).Dur("duration", res.Duration).Msg("Cycle failed")
		return res, err
	}
	log.Info().
		Str("title", res.Recipe.Title).
		Float64("seo_score", res.Analysis.Score).
		Str("grade", string(res.Analysis.Grade)).
		Str("url", res.Published.URL).
		Dur("duration", res.Duration).
		Msg("Cycle completed")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, category string, res *CycleResult, log *zerolog.Logger) error {
	if category == "" {
		category = SelectCategory(p.tracker.CategoryCounts(), p.config.Categories, p.rng)
		if category == "" {
			return errors.New("no categories configured")
		}
	}
	res.Category = category
	log.Info().Str("category", category).Bool("draft", p.config.Draft).Msg("Starting cycle")

	log.Info().Msg("Step 1/5: generating recipe")
	recipe, err := p.generator.Generate(ctx, category)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	res.Recipe = recipe

	log.Info().Msg("Step 2/5: validating")
	res.Validation = p.validator.Validate(recipe)
	for _, w := range res.Validation.Warnings {
		log.Warn().Str("warning", w).Msg("Validation warning")
	}
	if !res.Validation.OK {
		return fmt.Errorf("%w: %s", ErrValidation, res.Validation.Summary())
	}

	log.Info().Msg("Step 3/5: optimizing SEO")
	p.optimizer.Optimize(recipe)
	res.Analysis = p.optimizer.Analyze(recipe)
	for _, issue := range res.Analysis.Issues() {
		log.Debug().Str("issue", issue).Msg("SEO check missed")
	}

	log.Info().Msg("Step 4/5: publishing")
	html, err := p.renderer(recipe)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	published, err := p.publisher.Publish(ctx, publish.Post{
		Title:  recipe.Title,
		HTML:   html,
		Labels: recipe.Tags,
		Draft:  p.config.Draft,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	res.Published = published
	recipe.PostID = published.PostID
	recipe.PostURL = published.URL
	recipe.PublishedAt = published.PublishedAt
	p.metrics.ObserveSEOScore(res.Analysis.Score)

	log.Info().Msg("Step 5/5: tracking")
	if err := p.tracker.Track(recipe, !p.config.Draft); err != nil {
		log.Error().Err(err).Msg("Failed to track recipe")
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomePublished
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidationFailed
	case errors.Is(err, ErrPublish):
		return metrics.OutcomePublishFailed
	case errors.Is(err, ErrGeneration):
		return metrics.OutcomeGenerationFailed
	default:
		return metrics.OutcomeError
	}
}

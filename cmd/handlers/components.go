package handlers

import (
	"context"
	"fmt"
	"time"

	"chefpress/internal/config"
	"chefpress/internal/llm"
	"chefpress/internal/metrics"
	"chefpress/internal/pipeline"
	"chefpress/internal/publish"
	"chefpress/internal/quality"
	"chefpress/internal/seo"
	"chefpress/internal/store"
)

// buildPipeline wires the production components together.
func buildPipeline(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidatePublishing(); err != nil {
		return nil, err
	}

	tracking, err := store.Open(cfg.TrackingPath())
	if err != nil {
		return nil, err
	}

	tokens := publish.NewTokenStore(cfg.Blogger.TokenFile)
	client, err := tokens.Client(ctx, publish.OAuthConfig(cfg.Blogger))
	if err != nil {
		return nil, err
	}
	publisher, err := publish.NewBloggerPublisher(ctx, cfg.Blogger.BlogID, client)
	if err != nil {
		return nil, err
	}

	generator := llm.NewGenerator(
		llm.NewGeminiFactory(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, nil),
		llm.OptionsFromConfig(cfg),
		llm.WithOnRetry(func(attempt int, wait time.Duration, err error) {
			rec.ObserveRetry(llm.Classify(err))
		}),
	)

	p, err := pipeline.NewBuilder().
		WithConfig(pipeline.ConfigFromApp(cfg)).
		WithGenerator(generator).
		WithValidator(quality.NewValidatorWithThresholds(quality.ThresholdsFromConfig(cfg))).
		WithOptimizer(seo.NewOptimizer(seo.OptionsFromConfig(cfg), nil)).
		WithPublisher(publisher).
		WithTracker(tracking).
		WithMetrics(rec).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return p, nil
}

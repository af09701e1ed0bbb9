package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"google.golang.org/genai"

	"chefpress/internal/config"
	"chefpress/internal/core"
	"chefpress/internal/logger"
)

// Options configures a Generator.
type Options struct {
	Model              string
	APIVersion         string
	FallbackAPIVersion string
	Temperature        float32
	TopP               float32
	TopK               float32
	MaxTokens          int32
	MaxAttempts        int
	RequestTimeout     time.Duration // first attempt
	RequestTimeoutStep time.Duration // added per further attempt
	MaxBackoff         time.Duration // cap for the exponential wait
	RateLimitWait      time.Duration // multiplied by the attempt number
	Policy             ContentPolicy
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		Model:              DefaultModel,
		APIVersion:         "v1beta",
		FallbackAPIVersion: "v1",
		Temperature:        0.9,
		TopP:               0.95,
		TopK:               40,
		MaxTokens:          8000,
		MaxAttempts:        3,
		RequestTimeout:     60 * time.Second,
		RequestTimeoutStep: 30 * time.Second,
		MaxBackoff:         60 * time.Second,
		RateLimitWait:      60 * time.Second,
		Policy: ContentPolicy{
			MinIngredients:        5,
			MinSteps:              6,
			TargetWordCount:       1200,
			MetaDescriptionLength: 160,
		},
	}
}

// OptionsFromConfig builds Options from the application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Model = NormalizeModel(cfg.Gemini.Model)
	if cfg.Gemini.APIVersion != "" {
		opts.APIVersion = cfg.Gemini.APIVersion
	}
	opts.FallbackAPIVersion = cfg.Gemini.FallbackAPIVersion
	opts.Temperature = cfg.Gemini.Temperature
	opts.TopP = cfg.Gemini.TopP
	opts.TopK = cfg.Gemini.TopK
	if cfg.Gemini.MaxTokens > 0 {
		opts.MaxTokens = cfg.Gemini.MaxTokens
	}
	if cfg.Gemini.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.Gemini.MaxAttempts
	}
	if cfg.Gemini.RequestTimeout > 0 {
		opts.RequestTimeout = cfg.Gemini.RequestTimeout
	}
	opts.RequestTimeoutStep = cfg.Gemini.RequestTimeoutStep
	opts.Policy = ContentPolicy{
		MinIngredients:        cfg.Content.MinIngredients,
		MinSteps:              cfg.Content.MinSteps,
		TargetWordCount:       cfg.Content.TargetWordCount,
		MetaDescriptionLength: cfg.SEO.MetaDescriptionLength,
		Keywords:              cfg.SEO.PrimaryKeywords,
	}
	return opts
}

// Generator produces recipes from the generation API. It probes the API
// surface version once and sticks with whichever answered.
type Generator struct {
	factory BackendFactory
	opts    Options

	backend Backend
	version string

	sleep   func(ctx context.Context, d time.Duration) error
	jitter  func() float64
	onRetry func(attempt int, wait time.Duration, err error)
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithSleep replaces the wait between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) GeneratorOption {
	return func(g *Generator) { g.sleep = fn }
}

// WithJitter replaces the [0,1) jitter source used by the backoff.
func WithJitter(fn func() float64) GeneratorOption {
	return func(g *Generator) { g.jitter = fn }
}

// WithOnRetry registers a callback invoked before every retry wait.
func WithOnRetry(fn func(attempt int, wait time.Duration, err error)) GeneratorOption {
	return func(g *Generator) { g.onRetry = fn }
}

// NewGenerator creates a Generator. Connect is called lazily by Generate.
func NewGenerator(factory BackendFactory, opts Options, options ...GeneratorOption) *Generator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	opts.Model = NormalizeModel(opts.Model)

	g := &Generator{
		factory: factory,
		opts:    opts,
		sleep:   sleepContext,
		jitter:  rand.Float64,
	}
	for _, o := range options {
		o(g)
	}
	return g
}

// Model returns the normalized model name in use.
func (g *Generator) Model() string { return g.opts.Model }

// APIVersion returns the API version selected by Connect, or "" before it.
func (g *Generator) APIVersion() string { return g.version }

// Connect probes the configured API version and, if that fails, the
// fallback version. The first one that answers is used for the session.
func (g *Generator) Connect(ctx context.Context) error {
	if g.backend != nil {
		return nil
	}

	versions := []string{g.opts.APIVersion}
	if fb := g.opts.FallbackAPIVersion; fb != "" && fb != g.opts.APIVersion {
		versions = append(versions, fb)
	}

	var errs []error
	for _, version := range versions {
		backend, err := g.factory(ctx, version)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", version, err))
			continue
		}

		if err := g.probe(ctx, backend); err != nil {
			logger.Warn("Gemini probe failed", "api_version", version, "model", g.opts.Model, "error", err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", version, err))
			continue
		}

		g.backend = backend
		g.version = version
		logger.Info("Gemini connected", "api_version", version, "model", g.opts.Model)
		return nil
	}

	return fmt.Errorf("connect to gemini (tried %s): %w", strings.Join(versions, ", "), errors.Join(errs...))
}

func (g *Generator) probe(ctx context.Context, backend Backend) error {
	pctx, cancel := context.WithTimeout(ctx, g.opts.RequestTimeout)
	defer cancel()

	_, err := backend.GenerateText(pctx, Request{
		Model:     g.opts.Model,
		Prompt:    ProbePrompt,
		MaxTokens: 16,
	})
	// an empty answer still proves the endpoint works
	if err == nil || errors.Is(err, ErrEmptyResponse) {
		return nil
	}
	return err
}

// Generate asks the model for a recipe in category, retrying transient
// failures with backoff. Authentication failures abort immediately with an
// error wrapping ErrAuthentication; running out of attempts returns an error
// wrapping ErrExhausted.
func (g *Generator) Generate(ctx context.Context, category string) (*core.Recipe, error) {
	if err := g.Connect(ctx); err != nil {
		return nil, err
	}

	req := Request{
		Model:       g.opts.Model,
		Prompt:      BuildPrompt(category, g.opts.Policy),
		Temperature: genai.Ptr(g.opts.Temperature),
		TopP:        g.opts.TopP,
		TopK:        g.opts.TopK,
		MaxTokens:   g.opts.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		logger.Info("Generating recipe", "category", category, "attempt", attempt, "max_attempts", g.opts.MaxAttempts)

		recipe, err := g.attempt(ctx, attempt, req, category)
		if err == nil {
			logger.Info("Recipe generated", "title", recipe.Title, "words", recipe.WordCount, "attempt", attempt)
			return recipe, nil
		}
		lastErr = err

		class := classify(err)
		if class == classAuth {
			logger.Error("Gemini rejected credentials", err, "api_version", g.version)
			return nil, fmt.Errorf("generate recipe: %w", err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generate recipe: %w", ctx.Err())
		}
		if attempt == g.opts.MaxAttempts {
			break
		}

		wait := g.backoff(attempt, class)
		logger.Warn("Generation attempt failed", "attempt", attempt, "class", class.String(), "wait", wait.String(), "error", err.Error())
		if g.onRetry != nil {
			g.onRetry(attempt, wait, err)
		}
		if err := g.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("generate recipe: %w", err)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, g.opts.MaxAttempts, lastErr)
}

func (g *Generator) attempt(ctx context.Context, attempt int, req Request, category string) (*core.Recipe, error) {
	timeout := g.opts.RequestTimeout + time.Duration(attempt-1)*g.opts.RequestTimeoutStep
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.backend.GenerateText(actx, req)
	if err != nil {
		return nil, err
	}
	return ParseRecipe(text, category)
}

// backoff returns the wait before attempt+1. Rate limits wait linearly,
// everything else waits min(2^attempt + jitter, MaxBackoff).
func (g *Generator) backoff(attempt int, class errorClass) time.Duration {
	if class == classRateLimit {
		return g.opts.RateLimitWait * time.Duration(attempt)
	}
	secs := math.Pow(2, float64(attempt)) + g.jitter()
	wait := time.Duration(secs * float64(time.Second))
	if g.opts.MaxBackoff > 0 && wait > g.opts.MaxBackoff {
		wait = g.opts.MaxBackoff
	}
	return wait
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

package pipeline

import (
	"errors"
	"math/rand/v2"

	"chefpress/internal/metrics"
	"chefpress/internal/render"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	config    *Config
	generator RecipeGenerator
	validator RecipeValidator
	optimizer SEOOptimizer
	publisher Publisher
	tracker   Tracker
	renderer  Renderer
	metrics   *metrics.Recorder
	rng       *rand.Rand
}

// NewBuilder creates a new pipeline builder with default settings
func NewBuilder() *Builder {
	return &Builder{
		config:   DefaultConfig(),
		renderer: render.RecipeHTML,
	}
}

// WithConfig sets the pipeline configuration
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithGenerator sets the recipe generator
func (b *Builder) WithGenerator(g RecipeGenerator) *Builder {
	b.generator = g
	return b
}

// WithValidator sets the quality gate
func (b *Builder) WithValidator(v RecipeValidator) *Builder {
	b.validator = v
	return b
}

// WithOptimizer sets the SEO optimizer
func (b *Builder) WithOptimizer(o SEOOptimizer) *Builder {
	b.optimizer = o
	return b
}

// WithPublisher sets the publishing service
func (b *Builder) WithPublisher(p Publisher) *Builder {
	b.publisher = p
	return b
}

// WithTracker sets the tracking store
func (b *Builder) WithTracker(t Tracker) *Builder {
	b.tracker = t
	return b
}

// WithRenderer replaces the HTML renderer
func (b *Builder) WithRenderer(r Renderer) *Builder {
	b.renderer = r
	return b
}

// WithMetrics enables metrics recording
func (b *Builder) WithMetrics(m *metrics.Recorder) *Builder {
	b.metrics = m
	return b
}

// WithRand sets the random source used for category selection
func (b *Builder) WithRand(rng *rand.Rand) *Builder {
	b.rng = rng
	return b
}

// Build constructs a fully configured Pipeline
func (b *Builder) Build() (*Pipeline, error) {
	var missing []error
	if b.generator == nil {
		missing = append(missing, errors.New("generator is required"))
	}
	if b.validator == nil {
		missing = append(missing, errors.New("validator is required"))
	}
	if b.optimizer == nil {
		missing = append(missing, errors.New("optimizer is required"))
	}
	if b.publisher == nil {
		missing = append(missing, errors.New("publisher is required"))
	}
	if b.tracker == nil {
		missing = append(missing, errors.New("tracker is required"))
	}
	if b.renderer == nil {
		missing = append(missing, errors.New("renderer is required"))
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	config := b.config
	if config == nil {
		config = DefaultConfig()
	}
	rng := b.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Pipeline{
		generator: b.generator,
		validator: b.validator,
		optimizer: b.optimizer,
		publisher: b.publisher,
		tracker:   b.tracker,
		renderer:  b.renderer,
		metrics:   b.metrics,
		rng:       rng,
		config:    config,
	}, nil
}

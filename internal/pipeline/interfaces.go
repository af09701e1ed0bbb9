package pipeline

import (
	"context"

	"chefpress/internal/core"
	"chefpress/internal/publish"
	"chefpress/internal/quality"
	"chefpress/internal/seo"
)

// RecipeGenerator produces a recipe for a category
type RecipeGenerator interface {
	Generate(ctx context.Context, category string) (*core.Recipe, error)
}

// RecipeValidator gates recipes before publishing
type RecipeValidator interface {
	Validate(r *core.Recipe) quality.Result
}

// SEOOptimizer enriches and scores recipes
type SEOOptimizer interface {
	// Optimize fills in SEO metadata in place
	Optimize(r *core.Recipe) *core.Recipe

	// Analyze scores r and stores the score on it
	Analyze(r *core.Recipe) seo.Analysis
}

// Publisher creates the blog post
type Publisher interface {
	Publish(ctx context.Context, post publish.Post) (*publish.Published, error)
}

// Tracker records publish attempts
type Tracker interface {
	Track(r *core.Recipe, published bool) error
	CategoryCounts() map[string]int
}

// Renderer produces the post HTML
type Renderer func(r *core.Recipe) (string, error)

// CycleRunner runs one publishing cycle
type CycleRunner interface {
	RunOnce(ctx context.Context, category string) (*CycleResult, error)
}

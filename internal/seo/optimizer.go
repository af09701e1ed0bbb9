// Package seo enriches recipe metadata and scores recipes against a fixed
// set of search heuristics.
package seo

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"chefpress/internal/config"
	"chefpress/internal/core"
)

const (
	maxKeywords       = 10
	maxTags           = 8
	minKeywordsToKeep = 3
	minTagsToKeep     = 5
	titleSampleWords  = 3
	termSampleSize    = 3
	ellipsis          = "..."
)

var (
	boilerplateTags = []string{"homemade recipes", "easy cooking"}
	dessertMarkers  = []string{"sweet", "dessert", "cake", "cookie", "biscuit", "pastr", "tart", "حلويات", "كيك"}
)

// Options holds the optimizer's tables and thresholds.
type Options struct {
	PrimaryKeywords       []string
	CookingTerms          []string
	TriggerPhrases        []string
	SearchTerms           []string
	TitlePrefix           string
	MetaDescriptionLength int
	Aggressive            bool

	// Scoring thresholds
	MinTitleLength  int
	MaxTitleLength  int
	TargetWordCount int
	MinIngredients  int
	MinSteps        int
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig builds Options from the application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PrimaryKeywords:       cfg.SEO.PrimaryKeywords,
		CookingTerms:          cfg.SEO.CookingTerms,
		TriggerPhrases:        cfg.SEO.TriggerPhrases,
		SearchTerms:           cfg.SEO.SearchTerms,
		TitlePrefix:           cfg.SEO.TitlePrefix,
		MetaDescriptionLength: cfg.SEO.MetaDescriptionLength,
		Aggressive:            cfg.SEO.Aggressive,
		MinTitleLength:        idealTitleMin,
		MaxTitleLength:        idealTitleMax,
		TargetWordCount:       cfg.Content.TargetWordCount,
		MinIngredients:        cfg.Content.MinIngredients,
		MinSteps:              cfg.Content.MinSteps,
	}
}

// Optimizer fills in missing SEO metadata and scores recipes.
type Optimizer struct {
	opts Options
	rng  *rand.Rand
}

// NewOptimizer creates an Optimizer. rng drives the keyword sampling; a nil
// rng uses a randomly seeded source.
func NewOptimizer(opts Options, rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Optimizer{opts: opts, rng: rng}
}

// Optimize enriches r in place: title rewrite (aggressive mode only), meta
// description, keywords, tags, then a fresh word count.
func (o *Optimizer) Optimize(r *core.Recipe) *core.Recipe {
	if o.opts.Aggressive {
		r.Title = o.RewriteTitle(r.Title)
	}

	r.MetaDescription = o.MetaDescription(r.Description, o.primaryKeyword(r))

	if len(r.Keywords) < minKeywordsToKeep {
		r.Keywords = o.enrichKeywords(r)
	}
	if len(r.Tags) < minTagsToKeep {
		r.Tags = o.enrichTags(r)
	}

	r.RecomputeWordCount()
	return r
}

// RewriteTitle prepends the title prefix unless the title already carries
// one of the trigger phrases.
func (o *Optimizer) RewriteTitle(title string) string {
	title = strings.TrimSpace(title)
	prefix := strings.TrimSpace(o.opts.TitlePrefix)
	if prefix == "" || containsAny(title, o.opts.TriggerPhrases) {
		return title
	}
	if title == "" {
		return prefix
	}
	return prefix + " " + title
}

// MetaDescription builds "<description, cut to fit> | <keyword>" whose rune
// length never exceeds the configured cap. An empty description yields the
// keyword alone.
func (o *Optimizer) MetaDescription(description, keyword string) string {
	limit := o.opts.MetaDescriptionLength
	description = strings.Join(strings.Fields(description), " ")

	suffix := ""
	if keyword != "" {
		suffix = " | " + keyword
	}

	budget := limit - utf8.RuneCountInString(suffix)
	if description == "" || budget <= len(ellipsis) {
		return strings.TrimSpace(truncateRunes(strings.TrimPrefix(suffix, " | "), limit))
	}

	if utf8.RuneCountInString(description) > budget {
		description = strings.TrimSpace(truncateRunes(description, budget-len(ellipsis))) + ellipsis
	}
	return description + suffix
}

func (o *Optimizer) primaryKeyword(r *core.Recipe) string {
	for _, kw := range o.opts.PrimaryKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			return kw
		}
	}
	return r.Category
}

// enrichKeywords merges existing keywords, primary keywords, the category,
// title words and a sample of cooking terms. Primary keywords get only the
// room the other sources leave; any left over fill the tail.
func (o *Optimizer) enrichKeywords(r *core.Recipe) []string {
	set := newFoldSet(maxKeywords)
	set.add(r.Keywords...)

	primary := o.opts.PrimaryKeywords
	room := maxKeywords - len(set.items) - 1 - titleSampleWords - termSampleSize
	used := 0
	for ; used < len(primary) && room > 0; used++ {
		if set.add(primary[used]) {
			room--
		}
	}
	set.add(r.Category)

	skip := newFoldSet(len(strings.Fields(o.opts.TitlePrefix)))
	skip.add(strings.Fields(o.opts.TitlePrefix)...)
	taken := 0
	for _, w := range strings.Fields(r.Title) {
		if taken == titleSampleWords {
			break
		}
		w = strings.Trim(w, ".,:;!?\"'()")
		if utf8.RuneCountInString(w) > 3 && !skip.seen[fold(w)] && set.add(w) {
			taken++
		}
	}

	terms := o.opts.CookingTerms
	for i, idx := range o.rng.Perm(len(terms)) {
		if i == termSampleSize {
			break
		}
		set.add(terms[idx])
	}

	set.add(primary[used:]...)
	return set.items
}

func (o *Optimizer) enrichTags(r *core.Recipe) []string {
	set := newFoldSet(maxTags)
	set.add(r.Tags...)
	set.add(r.Category)
	set.add(boilerplateTags...)
	set.add(r.Difficulty)
	if containsAny(r.Category, dessertMarkers) {
		set.add("desserts")
	}
	return set.items
}

// foldSet keeps insertion order and rejects case-insensitive duplicates.
type foldSet struct {
	limit int
	seen  map[string]bool
	items []string
}

func newFoldSet(limit int) *foldSet {
	return &foldSet{limit: limit, seen: map[string]bool{}}
}

func (s *foldSet) add(values ...string) bool {
	added := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || len(s.items) >= s.limit {
			continue
		}
		key := fold(v)
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.items = append(s.items, v)
		added = true
	}
	return added
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func containsAny(s string, needles []string) bool {
	hay := fold(s)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(hay, fold(n)) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package seo

import (
	"fmt"
	"math"
	"unicode/utf8"

	"chefpress/internal/core"
)

const (
	idealTitleMin = 30
	idealTitleMax = 65

	keywordsFull    = 6
	keywordsPartial = 3
	minMetaLength   = 100

	pointsTitleLength = 25
	pointsTitleSearch = 15
	pointsWordsFull   = 20
	pointsWordsPart   = 10
	pointsIngredients = 10
	pointsSteps       = 10
	pointsKeywords    = 15
	pointsKeywordPart = 8
	pointsMeta        = 5
)

// Grade buckets a score into a qualitative label.
type Grade string

const (
	GradeExcellent  Grade = "excellent"
	GradeVeryGood   Grade = "very good"
	GradeGood       Grade = "good"
	GradeAcceptable Grade = "acceptable"
)

// GradeFor returns the grade for score.
func GradeFor(score float64) Grade {
	switch {
	case score >= 85:
		return GradeExcellent
	case score >= 70:
		return GradeVeryGood
	case score >= 55:
		return GradeGood
	default:
		return GradeAcceptable
	}
}

// Check is one scored heuristic.
type Check struct {
	Name   string
	Points float64
	Max    float64
	Detail string
}

// Passed reports whether the check earned full points.
func (c Check) Passed() bool { return c.Points >= c.Max }

// Analysis is the result of Analyze.
type Analysis struct {
	Score  float64
	Grade  Grade
	Checks []Check
}

// Issues lists the checks that did not earn full points.
func (a Analysis) Issues() []string {
	var out []string
	for _, c := range a.Checks {
		if !c.Passed() {
			out = append(out, fmt.Sprintf("%s: %s", c.Name, c.Detail))
		}
	}
	return out
}

// Analyze scores r out of 100. It writes the score back to r.SEOScore and
// changes nothing else.
func (o *Optimizer) Analyze(r *core.Recipe) Analysis {
	checks := []Check{
		o.checkTitleLength(r),
		o.checkTitleSearchTerms(r),
		o.checkWordCount(r),
		countCheck("ingredients", len(r.Ingredients), o.opts.MinIngredients, pointsIngredients),
		countCheck("steps", len(r.Steps), o.opts.MinSteps, pointsSteps),
		o.checkKeywords(r),
		o.checkMeta(r),
	}

	total := 0.0
	for _, c := range checks {
		total += c.Points
	}
	total = math.Max(0, math.Min(100, total))

	r.SEOScore = total
	return Analysis{Score: total, Grade: GradeFor(total), Checks: checks}
}

func (o *Optimizer) checkTitleLength(r *core.Recipe) Check {
	n := utf8.RuneCountInString(r.Title)
	c := Check{Name: "title length", Max: pointsTitleLength, Detail: fmt.Sprintf("%d characters, ideal %d-%d", n, o.opts.MinTitleLength, o.opts.MaxTitleLength)}
	if n >= o.opts.MinTitleLength && n <= o.opts.MaxTitleLength {
		c.Points = pointsTitleLength
	}
	return c
}

func (o *Optimizer) checkTitleSearchTerms(r *core.Recipe) Check {
	c := Check{Name: "title search terms", Max: pointsTitleSearch, Detail: "no search trigger word in title"}
	terms := append(append([]string(nil), o.opts.SearchTerms...), o.opts.TriggerPhrases...)
	if containsAny(r.Title, terms) {
		c.Points = pointsTitleSearch
		c.Detail = "search trigger word present"
	}
	return c
}

func (o *Optimizer) checkWordCount(r *core.Recipe) Check {
	target := o.opts.TargetWordCount
	c := Check{Name: "word count", Max: pointsWordsFull, Detail: fmt.Sprintf("%d words, target %d", r.WordCount, target)}
	switch {
	case r.WordCount >= target:
		c.Points = pointsWordsFull
	case float64(r.WordCount) >= 0.8*float64(target):
		c.Points = pointsWordsPart
	}
	return c
}

func (o *Optimizer) checkKeywords(r *core.Recipe) Check {
	n := len(r.Keywords)
	c := Check{Name: "keywords", Max: pointsKeywords, Detail: fmt.Sprintf("%d keywords, want %d", n, keywordsFull)}
	switch {
	case n >= keywordsFull:
		c.Points = pointsKeywords
	case n >= keywordsPartial:
		c.Points = pointsKeywordPart
	}
	return c
}

func (o *Optimizer) checkMeta(r *core.Recipe) Check {
	n := utf8.RuneCountInString(r.MetaDescription)
	c := Check{Name: "meta description", Max: pointsMeta, Detail: fmt.Sprintf("%d characters, want at least %d", n, minMetaLength)}
	if n >= minMetaLength {
		c.Points = pointsMeta
	}
	return c
}

func countCheck(name string, got, min int, points float64) Check {
	c := Check{Name: name, Max: points, Detail: fmt.Sprintf("%d, minimum %d", got, min)}
	if got >= min {
		c.Points = points
	}
	return c
}

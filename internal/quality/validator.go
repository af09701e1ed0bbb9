// Package quality gates generated recipes before they are published.
package quality

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"chefpress/internal/config"
	"chefpress/internal/core"
)

// publishWordRatio is the share of the target word count a recipe needs
// before it may be published.
const publishWordRatio = 0.7

// Thresholds holds the publish gate limits.
type Thresholds struct {
	MinTitleLength       int
	MaxTitleLength       int
	MinIngredients       int
	MinSteps             int
	TargetWordCount      int
	MinDescriptionLength int
	SoftKeywordThreshold int
}

// DefaultThresholds returns the thresholds of the default configuration.
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.Default())
}

// ThresholdsFromConfig reads the thresholds from the content section.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	c := cfg.Content
	return Thresholds{
		MinTitleLength:       c.MinTitleLength,
		MaxTitleLength:       c.MaxTitleLength,
		MinIngredients:       c.MinIngredients,
		MinSteps:             c.MinSteps,
		TargetWordCount:      c.TargetWordCount,
		MinDescriptionLength: c.MinDescriptionLength,
		SoftKeywordThreshold: c.SoftKeywordThreshold,
	}
}

// Result is the outcome of a validation. OK is true iff Errors is empty.
type Result struct {
	OK       bool
	Errors   []string
	Warnings []string
}

// Messages returns errors followed by warnings.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// Summary joins the messages on "; ".
func (r Result) Summary() string {
	return strings.Join(r.Messages(), "; ")
}

// Validator checks recipes against Thresholds.
type Validator struct {
	thresholds Thresholds
}

// NewValidator creates a validator with default thresholds
func NewValidator() *Validator {
	return &Validator{thresholds: DefaultThresholds()}
}

// NewValidatorWithThresholds creates a validator with custom thresholds
func NewValidatorWithThresholds(thresholds Thresholds) *Validator {
	return &Validator{thresholds: thresholds}
}

// Validate runs every check and collects all failures. It never modifies r.
func (v *Validator) Validate(r *core.Recipe) Result {
	t := v.thresholds
	var res Result

	title := strings.TrimSpace(r.Title)
	titleLen := utf8.RuneCountInString(title)
	switch {
	case title == "":
		res.Errors = append(res.Errors, "title is missing")
	case titleLen < t.MinTitleLength:
		res.Errors = append(res.Errors, fmt.Sprintf("title too short: %d characters, minimum %d", titleLen, t.MinTitleLength))
	case t.MaxTitleLength > 0 && titleLen > t.MaxTitleLength:
		res.Warnings = append(res.Warnings, fmt.Sprintf("title is long: %d characters, recommended maximum %d", titleLen, t.MaxTitleLength))
	}

	if n := len(r.Ingredients); n < t.MinIngredients {
		res.Errors = append(res.Errors, fmt.Sprintf("not enough ingredients: %d, minimum %d", n, t.MinIngredients))
	}
	if n := len(r.Steps); n < t.MinSteps {
		res.Errors = append(res.Errors, fmt.Sprintf("not enough steps: %d, minimum %d", n, t.MinSteps))
	}

	minWords := int(float64(t.TargetWordCount) * publishWordRatio)
	if r.WordCount < minWords {
		res.Errors = append(res.Errors, fmt.Sprintf("word count too low: %d, minimum %d", r.WordCount, minWords))
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(r.Description)); n < t.MinDescriptionLength {
		res.Errors = append(res.Errors, fmt.Sprintf("description too short: %d characters, minimum %d", n, t.MinDescriptionLength))
	}

	if r.PrepTime <= 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("invalid prep time: %d", r.PrepTime))
	}
	if r.CookTime <= 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("invalid cook time: %d", r.CookTime))
	}

	if n := len(r.Keywords); n < t.SoftKeywordThreshold {
		res.Warnings = append(res.Warnings, fmt.Sprintf("few keywords: %d, recommended %d", n, t.SoftKeywordThreshold))
	}

	res.OK = len(res.Errors) == 0
	return res
}

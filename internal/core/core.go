package core

import (
	"strings"
	"time"
)

// Recipe is one generated recipe plus the SEO metadata derived from it.
// It lives for a single generate/publish cycle and is then written to the
// tracking store as a summary entry.
type Recipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Ingredients []string `json:"ingredients"` // presentation order
	Steps       []string `json:"steps"`       // execution order
	PrepTime    int      `json:"prep_time"`   // minutes
	CookTime    int      `json:"cook_time"`   // minutes
	Servings    int      `json:"servings"`

	WordCount       int      `json:"word_count"`
	SEOScore        float64  `json:"seo_score"`
	Keywords        []string `json:"keywords"`
	Tags            []string `json:"tags"`
	MetaDescription string   `json:"meta_description"`

	// Set by the publishing service.
	PostID      string    `json:"post_id,omitempty"`
	PostURL     string    `json:"post_url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// CountWords returns the number of whitespace separated words across parts.
func CountWords(parts ...string) int {
	n := 0
	for _, p := range parts {
		n += len(strings.Fields(p))
	}
	return n
}

// RecomputeWordCount refreshes WordCount from the current text fields and
// returns the new value.
func (r *Recipe) RecomputeWordCount() int {
	n := CountWords(r.Title, r.Description)
	n += CountWords(r.Ingredients...)
	n += CountWords(r.Steps...)
	r.WordCount = n
	return n
}

// TotalTime is prep plus cook time in minutes.
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// IsPublished reports whether the publishing service assigned a post id.
func (r *Recipe) IsPublished() bool {
	return r.PostID != ""
}

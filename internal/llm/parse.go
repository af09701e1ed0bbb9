package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"chefpress/internal/core"
)

const (
	defaultPrepTime   = 30
	defaultCookTime   = 30
	defaultServings   = 4
	defaultDifficulty = "Medium"
)

// ExtractJSON returns the widest span from the first '{' to the last '}'.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseRecipe turns a model response into a Recipe. The response must embed
// one JSON object with non-empty title, description, ingredients and steps.
func ParseRecipe(text, category string) (*core.Recipe, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, &ParseError{Reason: "no JSON object in response"}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}

	r := &core.Recipe{
		Title:       stringField(data, "title"),
		Description: stringField(data, "description"),
		Category:    category,
		Ingredients: listField(data, "ingredients"),
		Steps:       listField(data, "steps"),
		PrepTime:    intField(data, "prep_time", defaultPrepTime),
		CookTime:    intField(data, "cook_time", defaultCookTime),
		Servings:    intField(data, "servings", defaultServings),
		Difficulty:  stringField(data, "difficulty"),
		Keywords:    listField(data, "keywords"),
		Tags:        listField(data, "tags"),
	}

	var missing []string
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Description == "" {
		missing = append(missing, "description")
	}
	if len(r.Ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(r.Steps) == 0 {
		missing = append(missing, "steps")
	}
	if len(missing) > 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}

	if r.Difficulty == "" {
		r.Difficulty = defaultDifficulty
	}
	if len(r.Tags) == 0 {
		r.Tags = []string{category}
	}

	r.RecomputeWordCount()
	return r, nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return cleanText(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func listField(data map[string]any, key string) []string {
	var out []string
	switch v := data[key].(type) {
	case []any:
		for _, item := range v {
			var s string
			switch it := item.(type) {
			case string:
				s = it
			case float64:
				s = strconv.FormatFloat(it, 'f', -1, 64)
			case map[string]any:
				// {"text": "..."} shaped steps
				if t, ok := it["text"].(string); ok {
					s = t
				}
			}
			if s = cleanText(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(v, "\n") {
			if s := cleanText(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// intField reads a positive-or-not integer; absent or non-numeric values
// yield def. "45" and "45 minutes" are both accepted.
func intField(data map[string]any, key string, def int) int {
	switch v := data[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return roundClamped(v)
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return def
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil && !math.IsNaN(f) {
			return roundClamped(f)
		}
	}
	return def
}

// roundClamped rounds v and keeps it within the int32 range.
func roundClamped(v float64) int {
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Round(v))))
}

// cleanText strips inline HTML the model sometimes emits and trims space.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

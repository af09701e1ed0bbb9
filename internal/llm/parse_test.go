package llm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `Here is your recipe:
` + "```json" + `
{
  "title": "Pistachio Knafeh",
  "description": "A crisp and syrupy classic.",
  "ingredients": ["500g kataifi dough", "200g butter", "<b>300g</b> cheese"],
  "steps": ["Shred the dough", "Layer with cheese", "Bake until golden"],
  "prep_time": "20 minutes",
  "cook_time": 40,
  "servings": 8,
  "difficulty": "Easy",
  "keywords": ["knafeh", "arabic sweets"],
  "tags": ["sweets"]
}
` + "```" + `
Enjoy!`

func TestExtractJSON(t *testing.T) {
	got, ok := ExtractJSON(`prose {"a": {"b": 1}} more {"c": 2} tail`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}} more {"c": 2}`, got)

	_, ok = ExtractJSON("no braces here")
	assert.False(t, ok)

	_, ok = ExtractJSON("} backwards {")
	assert.False(t, ok)
}

func TestParseRecipe_WellFormed(t *testing.T) {
	r, err := ParseRecipe(wellFormed, "Arabic sweets")
	require.NoError(t, err)

	assert.Equal(t, "Pistachio Knafeh", r.Title)
	assert.Equal(t, "Arabic sweets", r.Category)
	assert.Equal(t, []string{"500g kataifi dough", "200g butter", "300g cheese"}, r.Ingredients)
	assert.Len(t, r.Steps, 3)
	assert.Equal(t, 20, r.PrepTime)
	assert.Equal(t, 40, r.CookTime)
	assert.Equal(t, 8, r.Servings)
	assert.Equal(t, "Easy", r.Difficulty)
	assert.Equal(t, []string{"knafeh", "arabic sweets"}, r.Keywords)
	assert.Equal(t, []string{"sweets"}, r.Tags)

	wc := r.WordCount
	assert.Positive(t, wc)
	assert.Equal(t, wc, r.RecomputeWordCount())
}

func TestParseRecipe_Defaults(t *testing.T) {
	text := `{"title": "Date cookies", "description": "Soft cookies.",
		"ingredients": ["dates", "flour"], "steps": ["mix", "bake"],
		"prep_time": "soon", "servings": null}`

	r, err := ParseRecipe(text, "Biscuits and cookies")
	require.NoError(t, err)

	assert.Equal(t, defaultPrepTime, r.PrepTime)
	assert.Equal(t, defaultCookTime, r.CookTime)
	assert.Equal(t, defaultServings, r.Servings)
	assert.Equal(t, defaultDifficulty, r.Difficulty)
	assert.Equal(t, []string{"Biscuits and cookies"}, r.Tags)
	assert.Empty(t, r.Keywords)
}

func TestIntField(t *testing.T) {
	data := map[string]any{
		"plain":   float64(45),
		"half":    12.5,
		"text":    "45 minutes",
		"huge":    1e300,
		"tiny":    -1e300,
		"hugestr": "1e300",
		"word":    "soon",
	}

	assert.Equal(t, 45, intField(data, "plain", 0))
	assert.Equal(t, 13, intField(data, "half", 0))
	assert.Equal(t, 45, intField(data, "text", 0))
	assert.Equal(t, math.MaxInt32, intField(data, "huge", 0))
	assert.Equal(t, math.MinInt32, intField(data, "tiny", 0))
	assert.Equal(t, math.MaxInt32, intField(data, "hugestr", 0))
	assert.Equal(t, 7, intField(data, "word", 7))
	assert.Equal(t, 7, intField(data, "missing", 7))
}

func TestParseRecipe_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no json", "I cannot help with that."},
		{"invalid json", `{"title": "x", "description": }`},
		{"missing title", `{"description": "d", "ingredients": ["a"], "steps": ["b"]}`},
		{"empty ingredients", `{"title": "t", "description": "d", "ingredients": [], "steps": ["b"]}`},
		{"blank steps", `{"title": "t", "description": "d", "ingredients": ["a"], "steps": ["  "]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRecipe(tt.text, "Cakes")
			assert.Nil(t, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseRecipe_StepObjectsAndStringLists(t *testing.T) {
	text := `{"title": "Basbousa", "description": "Semolina cake.",
		"ingredients": "semolina\nyogurt\n\nsugar",
		"steps": [{"@type": "HowToStep", "text": "Mix"}, {"text": "Bake"}]}`

	r, err := ParseRecipe(text, "Cakes and tortes")
	require.NoError(t, err)
	assert.Equal(t, []string{"semolina", "yogurt", "sugar"}, r.Ingredients)
	assert.Equal(t, []string{"Mix", "Bake"}, r.Steps)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Cold desserts", ContentPolicy{
		MinIngredients:        5,
		MinSteps:              6,
		TargetWordCount:       1200,
		MetaDescriptionLength: 160,
		Keywords:              []string{"a", "b", "c", "d"},
	})

	assert.Contains(t, p, `"Cold desserts"`)
	assert.Contains(t, p, "At least 5 detailed ingredients")
	assert.Contains(t, p, "At least 6 clear preparation steps")
	assert.Contains(t, p, "a, b, c\n")
	assert.NotContains(t, p, "a, b, c, d")
	for _, key := range []string{"title", "description", "ingredients", "steps", "prep_time", "cook_time", "servings", "difficulty", "keywords", "tags"} {
		assert.Contains(t, p, `"`+key+`"`)
	}
}

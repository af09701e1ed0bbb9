package llm

import (
	"fmt"
	"strings"
)

// ProbePrompt is the low-cost prompt used to check connectivity.
const ProbePrompt = "Reply with the single word OK."

// ContentPolicy is what the recipe prompt asks the model to satisfy.
type ContentPolicy struct {
	MinIngredients        int
	MinSteps              int
	TargetWordCount       int
	MetaDescriptionLength int
	Keywords              []string
}

const recipePromptTemplate = `You are a professional pastry chef and SEO writer specialising in %[1]s.

Task: write one original, detailed recipe in the category "%[1]s".

Requirements:
1. Original and creative, not a copy of a well known recipe.
2. At least %[2]d detailed ingredients with quantities.
3. At least %[3]d clear preparation steps.
4. Work in these keywords naturally: %[4]s
5. Around %[5]d words in total.

Answer with JSON only, no extra text, using exactly this shape:
{
  "title": "catchy title containing a keyword",
  "description": "rich description of 200-300 words",
  "ingredients": ["ingredient 1 with quantity", "ingredient 2", "..."],
  "steps": ["step 1 in detail", "step 2", "..."],
  "prep_time": 30,
  "cook_time": 45,
  "servings": 6,
  "difficulty": "Medium",
  "meta_description": "summary of at most %[6]d characters",
  "keywords": ["keyword1", "keyword2", "..."],
  "tags": ["tag1", "tag2", "..."]
}`

// BuildPrompt renders the recipe prompt for category.
func BuildPrompt(category string, p ContentPolicy) string {
	kw := p.Keywords
	if len(kw) > 3 {
		kw = kw[:3]
	}
	return fmt.Sprintf(recipePromptTemplate,
		category, p.MinIngredients, p.MinSteps, strings.Join(kw, ", "),
		p.TargetWordCount, p.MetaDescriptionLength)
}

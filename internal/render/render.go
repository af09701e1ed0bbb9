// Package render turns a recipe into the HTML body of a blog post.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"chefpress/internal/core"
)

var recipeTemplate = template.Must(template.New("recipe").Funcs(template.FuncMap{
	"hashtags": hashtags,
}).Parse(`<article class="recipe-post">
  <div class="recipe-header">
    <h1>{{.Title}}</h1>
    <p class="recipe-meta">
      <span>Prep: {{.PrepTime}} min</span> |
      <span>Cook: {{.CookTime}} min</span> |
      <span>Serves {{.Servings}}</span> |
      <span>{{.Difficulty}}</span>
    </p>
  </div>
  <div class="recipe-description">
    <p>{{.Description}}</p>
  </div>
  <div class="recipe-ingredients">
    <h2>Ingredients</h2>
    <ul>
{{- range .Ingredients}}
      <li>{{.}}</li>
{{- end}}
    </ul>
  </div>
  <div class="recipe-steps">
    <h2>Instructions</h2>
    <ol>
{{- range .Steps}}
      <li>{{.}}</li>
{{- end}}
    </ol>
  </div>
{{- with .Tags}}
  <div class="recipe-footer">
    <p><strong>Tags:</strong> {{hashtags .}}</p>
  </div>
{{- end}}
</article>
<script type="application/ld+json">{{.Schema}}</script>
`))

// schemaRecipe is the schema.org/Recipe document embedded in every post.
type schemaRecipe struct {
	Context            string       `json:"@context"`
	Type               string       `json:"@type"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	PrepTime           string       `json:"prepTime"`
	CookTime           string       `json:"cookTime"`
	TotalTime          string       `json:"totalTime"`
	RecipeYield        string       `json:"recipeYield"`
	RecipeCategory     string       `json:"recipeCategory"`
	Keywords           string       `json:"keywords,omitempty"`
	RecipeIngredient   []string     `json:"recipeIngredient"`
	RecipeInstructions []schemaStep `json:"recipeInstructions"`
}

type schemaStep struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Schema builds the JSON-LD document for r.
func Schema(r *core.Recipe) ([]byte, error) {
	steps := make([]schemaStep, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, schemaStep{Type: "HowToStep", Text: s})
	}
	doc := schemaRecipe{
		Context:            "https://schema.org/",
		Type:               "Recipe",
		Name:               r.Title,
		Description:        r.Description,
		PrepTime:           isoMinutes(r.PrepTime),
		CookTime:           isoMinutes(r.CookTime),
		TotalTime:          isoMinutes(r.TotalTime()),
		RecipeYield:        fmt.Sprintf("%d servings", r.Servings),
		RecipeCategory:     r.Category,
		Keywords:           strings.Join(r.Keywords, ", "),
		RecipeIngredient:   nonNil(r.Ingredients),
		RecipeInstructions: steps,
	}
	// json.Marshal escapes <, > and & so the output is safe inside <script>
	return json.Marshal(doc)
}

// RecipeHTML renders the post body: the article markup followed by the
// JSON-LD script.
func RecipeHTML(r *core.Recipe) (string, error) {
	schema, err := Schema(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode recipe schema: %w", err)
	}

	data := struct {
		*core.Recipe
		Schema template.JS
	}{Recipe: r, Schema: template.JS(schema)}

	var b strings.Builder
	if err := recipeTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render recipe %q: %w", r.Title, err)
	}
	return b.String(), nil
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.Join(strings.Fields(t), "_"); t != "" {
			out = append(out, "#"+t)
		}
	}
	return strings.Join(out, " ")
}

func isoMinutes(m int) string {
	return fmt.Sprintf("PT%dM", m)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

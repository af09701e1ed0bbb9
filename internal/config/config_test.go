package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "v1beta", cfg.Gemini.APIVersion)
	assert.Equal(t, "v1", cfg.Gemini.FallbackAPIVersion)
	assert.Equal(t, 3, cfg.Gemini.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Gemini.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.Publishing.Cooldown)
	assert.Len(t, cfg.Content.Categories, 8)
	assert.Equal(t, 160, cfg.SEO.MetaDescriptionLength)
	assert.Equal(t, filepath.Join("data", "performance.json"), cfg.TrackingPath())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chefpress.yaml")
	yaml := `
gemini:
  model: pro
  max_attempts: 5
content:
  categories: ["Cakes", "Cookies"]
  min_steps: 4
publishing:
  cooldown: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("BLOGGER_BLOG_ID", "blog-1")
	t.Setenv("DRAFT_MODE", "true")
	t.Setenv("PUBLISH_INTERVAL_HOURS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.App.ConfigFile)
	assert.Equal(t, "pro", cfg.Gemini.Model)
	assert.Equal(t, 5, cfg.Gemini.MaxAttempts)
	assert.Equal(t, []string{"Cakes", "Cookies"}, cfg.Content.Categories)
	assert.Equal(t, 4, cfg.Content.MinSteps)
	assert.Equal(t, 5, cfg.Content.MinIngredients)
	assert.Equal(t, 30*time.Minute, cfg.Publishing.Cooldown)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "blog-1", cfg.Blogger.BlogID)
	assert.True(t, cfg.Publishing.DraftMode)
	assert.Equal(t, 12.0, cfg.Publishing.IntervalHours)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = ""
	cfg.Gemini.MaxAttempts = 0
	cfg.Publishing.Jitter = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key is required")
	assert.Contains(t, err.Error(), "max_attempts")
	assert.Contains(t, err.Error(), "jitter")
}

func TestValidatePublishing(t *testing.T) {
	cfg := Default()
	err := cfg.ValidatePublishing()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOGGER_BLOG_ID")
	assert.Contains(t, err.Error(), "BLOGGER_CLIENT_ID")

	cfg.Blogger = Blogger{BlogID: "1", ClientID: "id", ClientSecret: "secret"}
	assert.NoError(t, cfg.ValidatePublishing())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tokens", "t.json"), expandPath("~/tokens/t.json"))

	t.Setenv("CHEFPRESS_TEST_DIR", "/tmp/chef")
	assert.Equal(t, "/tmp/chef/data", expandPath("$CHEFPRESS_TEST_DIR/data"))
}

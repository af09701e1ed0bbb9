package handlers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpress/internal/core"
	"chefpress/internal/store"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "chefpress.yaml")
	body := "app:\n  data_dir: " + dir + "\n  tracking_file: tracking.json\n  log_level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	s, err := store.Open(filepath.Join(dir, "tracking.json"))
	require.NoError(t, err)
	require.NoError(t, s.Track(&core.Recipe{
		Title:       "How to Make Basbousa",
		Category:    "Arabic sweets",
		SEOScore:    88,
		WordCount:   1250,
		PostID:      "42",
		PostURL:     "https://example.blogspot.com/basbousa.html",
		PublishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, true))

	out, err := execute(t, "report", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Publishing report")
	assert.Contains(t, out, "Arabic sweets")
	assert.Contains(t, out, "How to Make Basbousa")
}

func TestReportCommand_EmptyStore(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "report", "--config", writeConfig(t, dir))

	require.NoError(t, err)
	assert.Contains(t, out, "Publishing report")
	assert.NoFileExists(t, filepath.Join(dir, "tracking.json"))
}

func TestReportCommand_CorruptFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracking.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := execute(t, "report", "--config", writeConfig(t, dir))

	require.ErrorIs(t, err, store.ErrCorrupt)
	assert.FileExists(t, path)
	assert.NoFileExists(t, path+".corrupt")
}

func TestOnceCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")

	_, err := execute(t, "once", "--config", writeConfig(t, t.TempDir()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key is required")
}

func TestAuthCommand_RequiresCredentials(t *testing.T) {
	t.Setenv("BLOGGER_BLOG_ID", "")
	t.Setenv("BLOGGER_CLIENT_ID", "")
	t.Setenv("BLOGGER_CLIENT_SECRET", "")

	_, err := execute(t, "auth", "--config", writeConfig(t, t.TempDir()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blogger blog id is required")
}

func TestUnknownConfigFile(t *testing.T) {
	_, err := execute(t, "report", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

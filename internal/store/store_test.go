package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpress/internal/core"
)

func published(title, category string, score float64, at time.Time) *core.Recipe {
	return &core.Recipe{
		Title:       title,
		Category:    category,
		SEOScore:    score,
		WordCount:   1200,
		PostID:      "post-" + title,
		PostURL:     "https://example.blogspot.com/" + title,
		PublishedAt: at,
	}
}

func TestOpen_MissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data", "performance.json"))
	require.NoError(t, err)

	assert.Empty(t, s.Entries())
	assert.Equal(t, 0, s.Statistics().TotalPublished)
	assert.NotNil(t, s.CategoryCounts())
}

func TestTrack_UpdatesStatisticsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "performance.json")
	s, err := Open(path)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Track(published("a", "Arabic sweets", 80, at), true))
	require.NoError(t, s.Track(published("b", "Arabic sweets", 0, time.Time{}), false))
	require.NoError(t, s.Track(published("c", "Cakes and tortes", 90, at.Add(time.Hour)), true))

	st := s.Statistics()
	assert.Equal(t, 2, st.TotalPublished)
	assert.Equal(t, 1, st.TotalDrafts)
	assert.InDelta(t, 85.0, st.AvgSEOScore, 1e-9)
	assert.Equal(t, map[string]int{"Arabic sweets": 2, "Cakes and tortes": 1}, st.CategoriesCount)
	require.NotNil(t, st.LastPublish)
	assert.Equal(t, at.Add(time.Hour), *st.LastPublish)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["recipes"], 3)
	assert.Contains(t, doc, "statistics")

	entries := s.Entries()
	assert.Nil(t, entries[1].PublishedAt)
	assert.Equal(t, "https://example.blogspot.com/a", entries[0].URL)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	s, err := Open(path)
	require.NoError(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	categories := []string{"Pastries", "Cakes and tortes", "Pastries", "Ramadan dishes", "Pastries"}
	for i, c := range categories {
		r := published(string(rune('a'+i)), c, float64(50+i*7), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.Track(r, i%2 == 0))
	}

	reloaded, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, s.Statistics(), reloaded.Statistics())
	assert.Equal(t, s.Entries(), reloaded.Entries())
	assert.Equal(t, Derive(reloaded.Entries()), reloaded.Statistics())
	assert.Equal(t, 3, reloaded.CategoryCounts()["Pastries"])
}

func TestOpen_RederivesStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	stale := `{"recipes": [{"title": "x", "category": "Pastries", "seo_score": 70, "is_published": true}],
		"statistics": {"total_published": 99, "categories_count": {"Pastries": 42}}}`
	require.NoError(t, os.WriteFile(path, []byte(stale), 0644))

	s, err := Open(path)
	require.NoError(t, err)

	st := s.Statistics()
	assert.Equal(t, 1, st.TotalPublished)
	assert.Equal(t, map[string]int{"Pastries": 1}, st.CategoriesCount)
	assert.Equal(t, 70.0, st.AvgSEOScore)
}

func TestOpen_CorruptFileMovedAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := Open(path)
	require.NoError(t, err)

	assert.Empty(t, s.Entries())
	backup, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRead_LeavesCorruptFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Read(path)

	require.ErrorIs(t, err, ErrCorrupt)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
	assert.NoFileExists(t, path+".corrupt")
}

func TestRead_RefusesTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Track(published("a", "Pastries", 60, time.Now()), true))

	s, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)
	assert.Equal(t, 1, s.Statistics().TotalPublished)

	err = s.Track(published("b", "Pastries", 70, time.Now()), true)
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Len(t, s.Entries(), 1)
}

func TestRead_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")

	s, err := Read(path)

	require.NoError(t, err)
	assert.Empty(t, s.Entries())
	assert.NoFileExists(t, path)
}

func TestTrack_FailedWriteKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.json")
	s, err := Open(path)
	require.NoError(t, err)

	// a directory where the file should be makes the final rename fail
	require.NoError(t, os.Mkdir(path, 0755))

	err = s.Track(published("a", "Pastries", 60, time.Now()), true)
	require.Error(t, err)

	assert.Empty(t, s.Entries())
	assert.Equal(t, 0, s.Statistics().TotalPublished)

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	assert.Empty(t, leftovers)
}

func TestStatistics_ReturnsCopy(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "performance.json"))
	require.NoError(t, err)
	require.NoError(t, s.Track(published("a", "Pastries", 60, time.Now()), true))

	s.CategoryCounts()["Pastries"] = 100
	s.Statistics().CategoriesCount["Pastries"] = 100

	assert.Equal(t, 1, s.CategoryCounts()["Pastries"])
}

func TestDerive_Empty(t *testing.T) {
	st := Derive(nil)

	assert.Equal(t, Statistics{CategoriesCount: map[string]int{}}, st)
}

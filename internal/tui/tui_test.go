package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpress/internal/store"
)

func sampleEntries() []store.Entry {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []store.Entry{
		{Title: "How to Make Basbousa", Category: "Arabic sweets", SEOScore: 88, WordCount: 1300, IsPublished: true, PublishedAt: &at, PostID: "p1", URL: "https://x/p1"},
		{Title: "Date cookies", Category: "Biscuits and cookies", SEOScore: 60, WordCount: 900},
		{Title: "Kunafa rolls", Category: "Arabic sweets", SEOScore: 75, WordCount: 1100, IsPublished: true},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func TestModel_Navigation(t *testing.T) {
	entries := sampleEntries()
	m := newModel(store.Derive(entries), entries)

	assert.Equal(t, "Kunafa rolls", m.entries[0].Title, "newest first")

	m = update(t, m, key("down"))
	m = update(t, m, key("j"))
	m = update(t, m, key("j"))
	assert.Equal(t, 2, m.selectedIdx)

	m = update(t, m, key("up"))
	assert.Equal(t, 1, m.selectedIdx)

	m = update(t, m, key("g"))
	assert.Equal(t, 0, m.selectedIdx)
	m = update(t, m, key("G"))
	assert.Equal(t, 2, m.selectedIdx)
}

func TestModel_Quit(t *testing.T) {
	m := newModel(store.Statistics{}, nil)

	next, cmd := m.Update(key("q"))

	require.NotNil(t, cmd)
	assert.True(t, next.(model).quitting)
	assert.Equal(t, "", next.(model).View())
}

func TestModel_ScrollsWithSelection(t *testing.T) {
	var entries []store.Entry
	for i := range 30 {
		entries = append(entries, store.Entry{Title: strings.Repeat("x", i+1)})
	}
	m := newModel(store.Derive(entries), entries)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 15})

	for range 20 {
		m = update(t, m, key("j"))
	}

	assert.Equal(t, 20, m.selectedIdx)
	assert.LessOrEqual(t, m.offset, m.selectedIdx)
	assert.Less(t, m.selectedIdx, m.offset+m.listRows())
}

func TestModel_View(t *testing.T) {
	entries := sampleEntries()
	m := newModel(store.Derive(entries), entries)
	m = update(t, m, key("G"))

	view := m.View()

	assert.Contains(t, view, "Published: 2")
	assert.Contains(t, view, "Basbousa")
	assert.Contains(t, view, "https://x/p1")
}

func TestModel_ViewEmpty(t *testing.T) {
	m := newModel(store.Derive(nil), nil)

	assert.Contains(t, m.View(), "Nothing tracked yet.")
}

func TestReport(t *testing.T) {
	entries := sampleEntries()

	out := Report(store.Derive(entries), entries)

	assert.Contains(t, out, "Published: 2")
	assert.Contains(t, out, "Drafts: 1")
	assert.Contains(t, out, "Avg SEO: 74.3")
	arabic := strings.Index(out, "Arabic sweets")
	biscuits := strings.Index(out, "Biscuits and cookies")
	require.NotEqual(t, -1, arabic)
	assert.Less(t, arabic, biscuits, "categories sorted by count")
	assert.Less(t, strings.Index(out, "Kunafa rolls"), strings.Index(out, "Date cookies"), "recent first")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "بسب…", truncate("بسبوسة", 4))
}

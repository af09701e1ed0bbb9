package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chefpress/internal/store"
)

var (
	accent        = lipgloss.Color("208")
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// recentLimit is how many posts the static report lists.
const recentLimit = 10

// Report renders the statistics, per-category counts and the most recent
// posts as plain styled text.
func Report(stats store.Statistics, entries []store.Entry) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Publishing report") + "\n\n")
	b.WriteString(summaryBar(stats) + "\n")

	if len(stats.CategoriesCount) > 0 {
		b.WriteString("\n" + titleStyle.Render("By category") + "\n")
		names := slices.Sorted(maps.Keys(stats.CategoriesCount))
		slices.SortStableFunc(names, func(a, c string) int {
			return stats.CategoriesCount[c] - stats.CategoriesCount[a]
		})
		for _, name := range names {
			fmt.Fprintf(&b, "  %-24s %d\n", name, stats.CategoriesCount[name])
		}
	}

	if len(entries) > 0 {
		b.WriteString("\n" + titleStyle.Render("Recent posts") + "\n")
		for i := len(entries) - 1; i >= 0 && i >= len(entries)-recentLimit; i-- {
			e := entries[i]
			fmt.Fprintf(&b, "  %s %5.1f  %-18s %s\n", statusMark(e), e.SEOScore, truncate(e.Category, 18), e.Title)
		}
	}
	return b.String()
}

func summaryBar(stats store.Statistics) string {
	last := "never"
	if stats.LastPublish != nil {
		last = stats.LastPublish.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("Published: %s  Drafts: %s  Avg SEO: %s  Last: %s",
		goodStyle.Render(fmt.Sprint(stats.TotalPublished)),
		okStyle.Render(fmt.Sprint(stats.TotalDrafts)),
		scoreStyle(stats.AvgSEOScore).Render(fmt.Sprintf("%.1f", stats.AvgSEOScore)),
		last)
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 85:
		return goodStyle
	case score >= 55:
		return okStyle
	default:
		return badStyle
	}
}

func statusMark(e store.Entry) string {
	if e.IsPublished {
		return goodStyle.Render("●")
	}
	return okStyle.Render("○")
}

func statusLabel(e store.Entry) string {
	if e.IsPublished {
		return "published"
	}
	return "draft"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Package tui renders the tracking report, either as a static summary or as
// an interactive bubbletea browser over the tracked posts.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chefpress/internal/store"
)

// model is the state of the report browser.
type model struct {
	stats       store.Statistics
	entries     []store.Entry // newest first
	selectedIdx int
	offset      int // first visible list row
	width       int
	height      int
	quitting    bool
}

// NewModel builds the browser over entries.
func NewModel(stats store.Statistics, entries []store.Entry) tea.Model {
	return newModel(stats, entries)
}

func newModel(stats store.Statistics, entries []store.Entry) model {
	newest := make([]store.Entry, len(entries))
	for i, e := range entries {
		newest[len(entries)-1-i] = e
	}
	return model{stats: stats, entries: newest, width: 100, height: 30}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.entries)-1 {
				m.selectedIdx++
			}
		case "home", "g":
			m.selectedIdx = 0
		case "end", "G":
			m.selectedIdx = max(0, len(m.entries)-1)
		}
	}

	rows := m.listRows()
	if m.selectedIdx < m.offset {
		m.offset = m.selectedIdx
	}
	if m.selectedIdx >= m.offset+rows {
		m.offset = m.selectedIdx - rows + 1
	}
	return m, nil
}

func (m model) listRows() int {
	// header, summary bar, borders and help take about ten lines
	return max(1, m.height-10)
}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	paneWidth := max(20, m.width/2-4)
	listStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(accent).Padding(0, 1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1).Width(paneWidth)

	var list strings.Builder
	list.WriteString(headerStyle.Render("Posts") + "\n")
	if len(m.entries) == 0 {
		list.WriteString(dimStyle.Render("Nothing tracked yet."))
	}
	end := min(len(m.entries), m.offset+m.listRows())
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		line := fmt.Sprintf("%s %s", statusMark(e), truncate(e.Title, paneWidth-6))
		if i == m.selectedIdx {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		list.WriteString(line + "\n")
	}

	detail := headerStyle.Render("Details") + "\n"
	if len(m.entries) > 0 {
		detail += entryDetail(m.entries[m.selectedIdx])
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), detailStyle.Render(detail))
	help := dimStyle.Render("[↑/k] Up | [↓/j] Down | [g/G] First/Last | [q] Quit")

	return lipgloss.NewStyle().Margin(1, 2).Render(summaryBar(m.stats) + "\n" + panes + "\n" + help)
}

func entryDetail(e store.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(e.Title))
	fmt.Fprintf(&b, "Category:  %s\n", e.Category)
	fmt.Fprintf(&b, "Status:    %s\n", statusLabel(e))
	fmt.Fprintf(&b, "SEO score: %s\n", scoreStyle(e.SEOScore).Render(fmt.Sprintf("%.1f", e.SEOScore)))
	fmt.Fprintf(&b, "Words:     %d\n", e.WordCount)
	if e.PublishedAt != nil {
		fmt.Fprintf(&b, "Published: %s\n", e.PublishedAt.Local().Format("2006-01-02 15:04"))
	}
	if e.PostID != "" {
		fmt.Fprintf(&b, "Post id:   %s\n", e.PostID)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "URL:       %s\n", e.URL)
	}
	return b.String()
}

// Run starts the interactive browser and blocks until the user quits.
func Run(stats store.Statistics, entries []store.Entry) error {
	p := tea.NewProgram(NewModel(stats, entries), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

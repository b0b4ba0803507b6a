package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/heliodyne/pulseview/metrics"
)

// StatsModel is a Bubble Tea model for session metrics.
type StatsModel struct {
	snapshot metrics.Snapshot
	quitting bool
}

// NewStatsModel creates a stats model over an immutable metrics snapshot.
func NewStatsModel(snapshot metrics.Snapshot) StatsModel {
	return StatsModel{snapshot: snapshot}
}

type statsKeyMap struct {
	Quit key.Binding
}

var statsKeys = statsKeyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, statsKeys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}
	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return RenderStats(m.snapshot) + "\n" + help
}

// RenderStats renders session metrics as styled stat boxes. Shared by the
// interactive model and the static `pulseview stats` output.
func RenderStats(s metrics.Snapshot) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Session %s (%s)", s.SessionID, s.Target)))
	b.WriteString("\n")

	cacheRow := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Cache hits", s.CacheHits, successColor),
		statBox("Joins", s.CacheJoins, highlightColor),
		statBox("Misses", s.CacheMisses, warningColor),
		statBox("Retries", s.CacheRetries, warningColor),
	)
	b.WriteString(cacheRow)
	b.WriteString("\n")

	fetchRow := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Fetches", s.FetchesStarted, highlightColor),
		statBox("Succeeded", s.FetchesSucceeded, successColor),
		statBox("Failed", s.FetchesFailed, errorColor),
		statBox("Superseded", s.Superseded, mutedColor),
	)
	b.WriteString(fetchRow)
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Bytes:"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d fetched", s.BytesFetched)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Block store:"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d hits / %d misses", s.BlockStoreHits, s.BlockStoreMisses)))
	b.WriteString("\n")

	return b.String()
}

func statBox(label string, value int64, color lipgloss.Color) string {
	box := StatBoxStyle.BorderForeground(color)
	content := StatValueStyle.Render(fmt.Sprintf("%d", value)) + "\n" +
		StatLabelStyle.Render(label)
	return box.Render(content)
}

// RunStats starts the interactive stats display and blocks until quit.
func RunStats(snapshot metrics.Snapshot) error {
	p := tea.NewProgram(NewStatsModel(snapshot))
	_, err := p.Run()
	return err
}

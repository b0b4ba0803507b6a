package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/heliodyne/pulseview/orchestrator"
	"github.com/heliodyne/pulseview/types"
)

// sparkLevels are the eight block characters used for series sparklines.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// snapshotMsg carries an orchestrator snapshot into the Bubble Tea loop.
type snapshotMsg orchestrator.Snapshot

// BrowseModel is a Bubble Tea model rendering the orchestrator's current
// snapshot. Key presses translate to orchestrator calls; everything else
// is display.
type BrowseModel struct {
	orch     *orchestrator.Orchestrator
	updates  <-chan orchestrator.Snapshot
	snapshot orchestrator.Snapshot
	width    int
	quitting bool
}

// NewBrowseModel creates a browse model. updates must be the channel fed
// by the orchestrator subscription registered before the first SetView.
func NewBrowseModel(orch *orchestrator.Orchestrator, updates <-chan orchestrator.Snapshot) BrowseModel {
	return BrowseModel{
		orch:     orch,
		updates:  updates,
		snapshot: orch.Current(),
	}
}

type browseKeyMap struct {
	Quit   key.Binding
	Reload key.Binding
}

var browseKeys = browseKeyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Reload: key.NewBinding(key.WithKeys("r")),
}

func (m BrowseModel) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.updates
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snapshot = orchestrator.Snapshot(msg)
		return m, m.waitForSnapshot()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Reload):
			m.orch.Reload()
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}
	content := RenderSnapshot(m.snapshot, m.chartWidth())
	help := HelpStyle.Render("r to reload, q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m BrowseModel) chartWidth() int {
	if m.width > 20 {
		return m.width - 16
	}
	return 48
}

// RenderSnapshot renders one orchestrator snapshot as styled text. Shared
// by the interactive model and the static `pulseview view` output.
func RenderSnapshot(snap orchestrator.Snapshot, chartWidth int) string {
	var b strings.Builder

	title := snap.View.Dataset
	if title == "" {
		title = "(no dataset)"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	phase := snap.Phase.String()
	b.WriteString(LabelStyle.Render("Phase:"))
	b.WriteString(PhaseStyle(phase).Render(phase))
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("Mode:"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%s / %s", snap.View.Mode, snap.View.Scale)))
	b.WriteString("\n")

	if len(snap.View.Channels) > 0 {
		b.WriteString(LabelStyle.Render("Channels:"))
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%v", snap.View.Channels)))
		b.WriteString("\n")
	}

	switch {
	case snap.Err != nil:
		b.WriteString(LabelStyle.Render("Error:"))
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("[%s] %v", snap.ErrKind, snap.Err)))
		b.WriteString("\n")
	case snap.Series != nil:
		for _, ch := range snap.Series.Channels {
			b.WriteString(LabelStyle.Render(fmt.Sprintf("ch %d:", ch.Meta.ChannelID)))
			b.WriteString(ChartStyle.Render(sparkline(ch.Samples, chartWidth)))
			b.WriteString(ValueStyle.Render(fmt.Sprintf("  %d samples", len(ch.Samples))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// sparkline compresses samples into a fixed-width run of block characters,
// scaled to the channel's own value range.
func sparkline(samples []types.Sample, width int) string {
	if len(samples) == 0 || width <= 0 {
		return ""
	}
	if width > len(samples) {
		width = len(samples)
	}

	// Bucket samples evenly and keep each bucket's mean value.
	buckets := make([]float64, width)
	counts := make([]int, width)
	for i, s := range samples {
		b := i * width / len(samples)
		buckets[b] += s.Value
		counts[b]++
	}
	lo, hi := buckets[0], buckets[0]
	for i := range buckets {
		if counts[i] > 0 {
			buckets[i] /= float64(counts[i])
		}
		if buckets[i] < lo {
			lo = buckets[i]
		}
		if buckets[i] > hi {
			hi = buckets[i]
		}
	}

	out := make([]rune, width)
	span := hi - lo
	for i, v := range buckets {
		level := 0
		if span > 0 {
			level = int((v - lo) / span * float64(len(sparkLevels)-1))
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}

// RunBrowse starts the interactive view browser and blocks until quit.
func RunBrowse(orch *orchestrator.Orchestrator, updates <-chan orchestrator.Snapshot) error {
	p := tea.NewProgram(NewBrowseModel(orch, updates))
	_, err := p.Run()
	return err
}

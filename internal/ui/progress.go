// Package ui renders generator progress in an interactive terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sdl3gen/internal/buildpipeline"
)

// maxVisible bounds the header lines shown at once.
const maxVisible = 8

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	prog    progress.Model
	items   []headerItem
	index   map[string]int
	stage   buildpipeline.Stage
	status  buildpipeline.Status
	width   int
	done    bool
}

type headerItem struct {
	path   string
	status buildpipeline.Status
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by events; it quits when
// the channel closes. Headers are added as their queued events arrive.
func NewProgressModel(title string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if label := stageLabel(m.stage, m.status); label != "" {
		header = fmt.Sprintf("%s (%s)", header, label)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	parsed, failed := m.counts()
	for _, item := range m.visible() {
		status := styleStatus(item.status).Render(fmt.Sprintf("%10s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}
	fmt.Fprintf(&b, "\n  %d/%d headers parsed", parsed, len(m.items))
	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	b.WriteString("\n\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visible lists failed headers first, then headers in work, capped at
// maxVisible.
func (m *progressModel) visible() []headerItem {
	var out []headerItem
	for _, want := range []buildpipeline.Status{buildpipeline.StatusError, buildpipeline.StatusWorking} {
		for _, item := range m.items {
			if item.status == want && len(out) < maxVisible {
				out = append(out, item)
			}
		}
	}
	return out
}

func (m *progressModel) counts() (parsed, failed int) {
	for _, item := range m.items {
		switch item.status {
		case buildpipeline.StatusDone:
			parsed++
		case buildpipeline.StatusError:
			parsed++
			failed++
		}
	}
	return parsed, failed
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		m.stage, m.status = ev.Stage, ev.Status
		return m.prog.SetPercent(m.percent())
	}
	idx, ok := m.index[ev.File]
	if !ok {
		idx = len(m.items)
		m.index[ev.File] = idx
		m.items = append(m.items, headerItem{path: ev.File})
	}
	m.items[idx].status = ev.Status
	return m.prog.SetPercent(m.percent())
}

// percent weighs parsing at 60% of the run; the whole-program stages share
// the rest.
func (m *progressModel) percent() float64 {
	pct := 0.0
	if len(m.items) > 0 {
		parsed, _ := m.counts()
		pct = 0.6 * float64(parsed) / float64(len(m.items))
	}
	finished := m.status == buildpipeline.StatusDone || m.status == buildpipeline.StatusSkipped
	switch m.stage {
	case buildpipeline.StageModel:
		pct = 0.6
		if finished {
			pct = 0.7
		}
	case buildpipeline.StageEmit:
		pct = 0.7
		if finished {
			pct = 0.9
		}
	case buildpipeline.StageCommit:
		pct = 0.9
		if finished {
			pct = 1.0
		}
	}
	return pct
}

func stageLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	switch status {
	case buildpipeline.StatusError:
		return string(stage) + " failed"
	case buildpipeline.StatusSkipped:
		return "up to date"
	}
	switch stage {
	case buildpipeline.StageDiscover:
		return "discovering"
	case buildpipeline.StageParse:
		return "parsing"
	case buildpipeline.StageModel:
		return "modelling"
	case buildpipeline.StageEmit:
		return "emitting"
	case buildpipeline.StageCommit:
		return "writing"
	}
	return ""
}

func styleStatus(status buildpipeline.Status) lipgloss.Style {
	switch status {
	case buildpipeline.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case buildpipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case buildpipeline.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

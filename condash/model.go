// ABOUTME: Model is a single-panel Bubble Tea dashboard showing live queue
// ABOUTME: depth, per-worker executing/idle state, and a scrolling log tail,
// ABOUTME: polling the same snapshot function webstatus exposes.
package condash

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/conveyor/submit"
)

// SnapshotFunc returns the current pool snapshot; Model never touches the
// queue or submitter directly (SPEC_FULL.md §4.14).
type SnapshotFunc func() submit.Snapshot

// tickMsg drives the poll loop, grounded on tui/app.go's TickCmd/TickMsg
// pattern.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

const maxLogLines = 200

// Model is the top-level tea.Model, grounded on tui/app.go's AppModel
// (composing sub-panels into one view) reduced to a single queue/worker
// panel — this domain has no DAG to render, only a FIFO queue and a
// worker pool. The scrolling log tail reuses tui/log_panel.go's
// viewport.Model-backed approach rather than hand-rolling scroll state.
type Model struct {
	snapshot SnapshotFunc
	width    int
	height   int
	log      []string
	viewport viewport.Model
	quitting bool
}

// New builds a Model polling snapshot for its live state.
func New(snapshot SnapshotFunc) Model {
	return Model{snapshot: snapshot, viewport: viewport.New(80, 10)}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		logHeight := msg.Height - 5
		if logHeight < 1 {
			logHeight = 1
		}
		m.viewport.Height = logHeight
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		snap := m.snapshot()
		m.appendLog(fmt.Sprintf("%s queue=%d executing=%v", time.Time(msg).Format("15:04:05"), snap.QueueDepth, snap.Executing))
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	snap := m.snapshot()
	header := TitleStyle.Render("conveyor") + " — live queue and worker status"

	var workers strings.Builder
	for i, busy := range snap.Executing {
		style := IdleStyle
		label := "idle"
		if busy {
			style = BusyStyle
			label = "busy"
		}
		if i > 0 {
			workers.WriteString("  ")
		}
		workers.WriteString(style.Render(fmt.Sprintf("worker %d: %s", i, label)))
	}

	queueLine := fmt.Sprintf("queue depth: %d", snap.QueueDepth)

	logContent := "No events yet"
	if len(m.log) > 0 {
		logContent = m.viewport.View()
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(queueLine)
	b.WriteString("\n")
	b.WriteString(workers.String())
	b.WriteString("\n\n")
	b.WriteString(logContent)
	return BorderStyle.Render(b.String())
}

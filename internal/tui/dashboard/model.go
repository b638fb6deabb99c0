// Package dashboard renders a live terminal view of running triggers.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/trigger"
	"github.com/Iron-Ham/adaptui/internal/tui/styles"
)

// DefaultRefresh is how often trigger status is re-read.
const DefaultRefresh = 250 * time.Millisecond

const maxActivity = 8

// Controller is the trigger registry the dashboard shows and controls.
type Controller interface {
	Statuses() []trigger.Status
	Disable(id string) error
	SetActive(id string, active bool) error
}

// Messages

type refreshMsg time.Time

// EventMsg carries a bus event into the program.
type EventMsg struct {
	Event event.Event
}

// Model is the dashboard state.
type Model struct {
	ctrl     Controller
	refresh  time.Duration
	spinner  spinner.Model
	statuses []trigger.Status
	outcome  map[string]string // trigger ID -> last outcome
	activity []string
	selected int
	width    int
	err      error
	quitting bool
}

// NewModel creates a dashboard over ctrl. A non-positive refresh uses
// DefaultRefresh.
func NewModel(ctrl Controller, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	return Model{
		ctrl:    ctrl,
		refresh: refresh,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Primary)),
		outcome: make(map[string]string),
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return refreshMsg(time.Now()) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshMsg:
		m.statuses = m.ctrl.Statuses()
		if m.selected >= len(m.statuses) {
			m.selected = max(len(m.statuses)-1, 0)
		}
		return m, m.refreshCmd()

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.statuses)-1 {
			m.selected++
		}
	case "d":
		if m.selected < len(m.statuses) {
			id := m.statuses[m.selected].ID
			m.err = m.ctrl.Disable(id)
			if m.err == nil {
				m.pushActivity(fmt.Sprintf("%s disable requested", id))
			}
			m.statuses = m.ctrl.Statuses()
		}
	case "p":
		if m.selected < len(m.statuses) {
			s := m.statuses[m.selected]
			m.err = m.ctrl.SetActive(s.ID, s.Paused)
			if m.err == nil {
				verb := "paused"
				if s.Paused {
					verb = "resumed"
				}
				m.pushActivity(fmt.Sprintf("%s %s", s.ID, verb))
			}
			m.statuses = m.ctrl.Statuses()
		}
	}
	return m, nil
}

// handleEvent mutates m; callers hold the only copy.
func (m *Model) handleEvent(e event.Event) {
	switch e := e.(type) {
	case event.LayoutAppliedEvent:
		m.outcome[e.TriggerID] = "applied"
		m.pushActivity(fmt.Sprintf("%s %s applied %.3f → %.3f (%d elements)",
			styles.StatusIcon("applied"), e.TriggerID, e.PreviousCost, e.Cost, len(e.ElementIDs)))
	case event.LayoutRejectedEvent:
		m.outcome[e.TriggerID] = "rejected"
		m.pushActivity(fmt.Sprintf("%s %s rejected %.3f → %.3f",
			styles.StatusIcon("rejected"), e.TriggerID, e.PreviousCost, e.Cost))
	case event.OptimizationAbandonedEvent:
		m.outcome[e.TriggerID] = "abandoned"
		m.pushActivity(fmt.Sprintf("%s %s abandoned (%s after %d polls)",
			styles.StatusIcon("abandoned"), e.TriggerID, e.Reason, e.Polls))
	case event.TriggerStoppedEvent:
		m.pushActivity(fmt.Sprintf("%s %s stopped (%s)",
			styles.StatusIcon("disabled"), e.TriggerID, e.Reason))
	}
}

func (m *Model) pushActivity(line string) {
	m.activity = append(m.activity, line)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

// state derives the display status of a trigger.
func (m Model) state(s trigger.Status) string {
	switch {
	case !s.Enabled:
		return "disabled"
	case s.Paused:
		return "paused"
	case s.Attempting:
		return "optimizing"
	}
	if o, ok := m.outcome[s.ID]; ok {
		return o
	}
	return "idle"
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("adaptui"))
	b.WriteString("\n")
	b.WriteString(styles.TableHeader.Render(fmt.Sprintf("  %-20s %-6s %-12s %10s %8s %8s %9s",
		"TRIGGER", "MODE", "STATE", "COST", "APPLIED", "REJECTED", "ABANDONED")))
	b.WriteString("\n")

	if len(m.statuses) == 0 {
		b.WriteString(styles.Subtitle.Render("  no triggers running"))
		b.WriteString("\n")
	}
	for i, s := range m.statuses {
		b.WriteString(m.renderRow(i, s))
		b.WriteString("\n")
	}

	if len(m.activity) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.ContentBox.Render(strings.Join(m.activity, "\n")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(styles.ErrorMsg.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpBar.Render(
		styles.HelpKey.Render("↑/↓") + " select  " +
			styles.HelpKey.Render("d") + " disable  " +
			styles.HelpKey.Render("p") + " pause/resume  " +
			styles.HelpKey.Render("q") + " quit"))
	return b.String()
}

func (m Model) renderRow(i int, s trigger.Status) string {
	state := m.state(s)
	icon := styles.StatusIcon(state)
	if state == "optimizing" {
		icon = m.spinner.View()
	}
	cost := "-"
	if s.HasCost {
		cost = fmt.Sprintf("%.4f", s.PreviousCost)
	}

	stateCell := lipgloss.NewStyle().Foreground(styles.StatusColor(state)).Render(fmt.Sprintf("%-12s", state))
	row := fmt.Sprintf("%s %-20s %-6s %s %10s %8d %8d %9d",
		icon, s.ID, s.Mode, stateCell, cost, s.Stats.Applied, s.Stats.Rejected, s.Stats.Abandoned)
	if i == m.selected {
		return styles.RowSelected.Render(row)
	}
	return row
}

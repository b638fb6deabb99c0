package dashboard

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/trigger"
)

type fakeController struct {
	statuses []trigger.Status
	disabled []string
	err      error
}

func (f *fakeController) Statuses() []trigger.Status {
	return append([]trigger.Status(nil), f.statuses...)
}

func (f *fakeController) Disable(id string) error {
	if f.err != nil {
		return f.err
	}
	f.disabled = append(f.disabled, id)
	for i := range f.statuses {
		if f.statuses[i].ID == id {
			f.statuses[i].Enabled = false
		}
	}
	return nil
}

func (f *fakeController) SetActive(id string, active bool) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.statuses {
		if f.statuses[i].ID == id {
			f.statuses[i].Paused = !active
		}
	}
	return nil
}

func newController() *fakeController {
	return &fakeController{statuses: []trigger.Status{
		{ID: "menu", Enabled: true, Mode: "sync", HasCost: true, PreviousCost: 0.25},
		{ID: "toolbar", Enabled: true, Mode: "async", Attempting: true},
	}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Refresh(t *testing.T) {
	ctrl := newController()
	m := NewModel(ctrl, time.Second)

	m, cmd := update(t, m, refreshMsg(time.Now()))
	if len(m.statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(m.statuses))
	}
	if cmd == nil {
		t.Error("refresh should schedule the next refresh")
	}

	ctrl.statuses = ctrl.statuses[:1]
	m.selected = 1
	m, _ = update(t, m, refreshMsg(time.Now()))
	if m.selected != 0 {
		t.Errorf("selected = %d after shrink, want 0", m.selected)
	}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(newController(), time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))

	steps := []struct {
		key  string
		want int
	}{
		{"down", 1},
		{"down", 1},
		{"k", 0},
		{"up", 0},
		{"j", 1},
	}
	for _, s := range steps {
		m, _ = update(t, m, key(s.key))
		if m.selected != s.want {
			t.Errorf("after %q selected = %d, want %d", s.key, m.selected, s.want)
		}
	}
}

func TestModel_Disable(t *testing.T) {
	ctrl := newController()
	m := NewModel(ctrl, time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))
	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("d"))

	if len(ctrl.disabled) != 1 || ctrl.disabled[0] != "toolbar" {
		t.Errorf("disabled = %v, want [toolbar]", ctrl.disabled)
	}
	if got := m.state(m.statuses[1]); got != "disabled" {
		t.Errorf("state = %q, want disabled", got)
	}

	ctrl.err = fmt.Errorf("boom")
	m, _ = update(t, m, key("d"))
	if m.err == nil || !strings.Contains(m.View(), "error: boom") {
		t.Error("disable failure should be shown")
	}
}

func TestModel_PauseToggle(t *testing.T) {
	ctrl := newController()
	m := NewModel(ctrl, time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))

	m, _ = update(t, m, key("p"))
	if !ctrl.statuses[0].Paused {
		t.Fatal("menu should be paused")
	}
	if got := m.state(m.statuses[0]); got != "paused" {
		t.Errorf("state = %q, want paused", got)
	}

	m, _ = update(t, m, key("p"))
	if ctrl.statuses[0].Paused {
		t.Error("menu should be resumed")
	}
	if !strings.Contains(m.View(), "menu resumed") {
		t.Errorf("activity missing resume:\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(newController(), time.Second)
	m, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}

func TestModel_Events(t *testing.T) {
	m := NewModel(newController(), time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))

	tests := []struct {
		name      string
		event     event.Event
		trigger   string
		wantState string
		wantLine  string
	}{
		{
			name:      "applied",
			event:     event.NewLayoutAppliedEvent("menu", "a1", false, false, 1, 0.5, []string{"menu"}),
			trigger:   "menu",
			wantState: "applied",
			wantLine:  "menu applied 1.000 → 0.500 (1 elements)",
		},
		{
			name:      "rejected",
			event:     event.NewLayoutRejectedEvent("menu", "a2", 1, 0.95, "inside band"),
			trigger:   "menu",
			wantState: "rejected",
			wantLine:  "menu rejected 1.000 → 0.950",
		},
		{
			name:      "abandoned",
			event:     event.NewOptimizationAbandonedEvent("menu", "a3", event.AbandonTimeout, time.Second, 12),
			trigger:   "menu",
			wantState: "abandoned",
			wantLine:  "menu abandoned (timeout after 12 polls)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ = update(t, m, EventMsg{Event: tt.event})
			if got := m.outcome[tt.trigger]; got != tt.wantState {
				t.Errorf("outcome = %q, want %q", got, tt.wantState)
			}
			last := m.activity[len(m.activity)-1]
			if !strings.Contains(last, tt.wantLine) {
				t.Errorf("activity = %q, want it to contain %q", last, tt.wantLine)
			}
		})
	}
}

func TestModel_ActivityBounded(t *testing.T) {
	m := NewModel(newController(), time.Second)
	for i := range maxActivity + 5 {
		m, _ = update(t, m, EventMsg{Event: event.NewTriggerStoppedEvent(fmt.Sprintf("t%d", i), "disabled")})
	}
	if len(m.activity) != maxActivity {
		t.Errorf("activity = %d lines, want %d", len(m.activity), maxActivity)
	}
	if !strings.Contains(m.activity[len(m.activity)-1], fmt.Sprintf("t%d", maxActivity+4)) {
		t.Errorf("last activity = %q", m.activity[len(m.activity)-1])
	}
}

func TestModel_State(t *testing.T) {
	m := NewModel(newController(), time.Second)
	m.outcome["menu"] = "applied"

	tests := []struct {
		name   string
		status trigger.Status
		want   string
	}{
		{"disabled wins", trigger.Status{ID: "menu", Enabled: false, Attempting: true}, "disabled"},
		{"paused", trigger.Status{ID: "menu", Enabled: true, Paused: true, Attempting: true}, "paused"},
		{"attempting", trigger.Status{ID: "menu", Enabled: true, Attempting: true}, "optimizing"},
		{"last outcome", trigger.Status{ID: "menu", Enabled: true}, "applied"},
		{"idle", trigger.Status{ID: "other", Enabled: true}, "idle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.state(tt.status); got != tt.want {
				t.Errorf("state() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(&fakeController{}, time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))
	if !strings.Contains(m.View(), "no triggers running") {
		t.Error("empty dashboard should say no triggers are running")
	}

	m = NewModel(newController(), time.Second)
	m, _ = update(t, m, refreshMsg(time.Now()))
	view := m.View()
	for _, want := range []string{"adaptui", "menu", "toolbar", "0.2500", "optimizing", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/adaptui/internal/event"
)

// App wraps the Bubbletea program.
type App struct {
	model Model
	bus   *event.Bus
}

// New creates a dashboard application fed by bus.
func New(ctrl Controller, bus *event.Bus, refresh time.Duration) *App {
	return &App{
		model: NewModel(ctrl, refresh),
		bus:   bus,
	}
}

// Run shows the dashboard until the user quits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	program := tea.NewProgram(a.model, tea.WithAltScreen())

	subID := a.bus.SubscribeAll(func(e event.Event) {
		program.Send(EventMsg{Event: e})
	})
	defer a.bus.Unsubscribe(subID)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-done:
		}
	}()

	_, err := program.Run()
	return err
}

package trigger

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/logging"
)

type member struct {
	trigger *Trigger
	cancel  context.CancelFunc
	done    chan struct{}
}

// Group runs a set of triggers concurrently, one per coordinator.
// Triggers added after Start begin running immediately.
type Group struct {
	mu      sync.Mutex
	members map[string]*member
	order   []string
	ctx     context.Context
	wg      conc.WaitGroup
	logger  *logging.Logger
}

// NewGroup creates an empty group.
func NewGroup(logger *logging.Logger) *Group {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Group{
		members: make(map[string]*member),
		logger:  logger.WithComponent("trigger-group"),
	}
}

// Add registers t. It fails with errors.ErrTriggerExists when a trigger
// with the same ID is already registered.
func (g *Group) Add(t *Trigger) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.members[t.ID()]; ok {
		return errors.Wrapf(errors.ErrTriggerExists, "trigger %q", t.ID())
	}
	m := &member{trigger: t}
	g.members[t.ID()] = m
	g.order = append(g.order, t.ID())
	if g.ctx != nil {
		g.launch(m)
	}
	return nil
}

// Start runs every registered trigger under ctx.
func (g *Group) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ctx = ctx
	for _, id := range g.order {
		g.launch(g.members[id])
	}
}

// launch must be called with g.mu held.
func (g *Group) launch(m *member) {
	ctx, cancel := context.WithCancel(g.ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	t := m.trigger
	done := m.done
	g.wg.Go(func() {
		defer close(done)
		if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn("trigger exited", "trigger_id", t.ID(), "error", err)
		}
	})
}

// Get returns the trigger registered under id.
func (g *Group) Get(id string) (*Trigger, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[id]
	if !ok {
		return nil, errors.NewNotFoundError("trigger", id).WithCause(errors.ErrTriggerNotFound)
	}
	return m.trigger, nil
}

// Disable disables the trigger registered under id.
func (g *Group) Disable(id string) error {
	t, err := g.Get(id)
	if err != nil {
		return err
	}
	t.Disable()
	return nil
}

// SetActive pauses or resumes the trigger registered under id.
func (g *Group) SetActive(id string, active bool) error {
	t, err := g.Get(id)
	if err != nil {
		return err
	}
	return t.SetActive(active)
}

// Remove stops the trigger registered under id, waits for it to exit and
// releases its coordinator.
func (g *Group) Remove(id string) error {
	g.mu.Lock()
	m, ok := g.members[id]
	if ok {
		delete(g.members, id)
		for i, oid := range g.order {
			if oid == id {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
	}
	g.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError("trigger", id).WithCause(errors.ErrTriggerNotFound)
	}
	g.stop(m)
	return nil
}

func (g *Group) stop(m *member) {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	m.trigger.Close()
}

// Triggers returns the registered triggers in insertion order.
func (g *Group) Triggers() []*Trigger {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Trigger, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.members[id].trigger)
	}
	return out
}

// Statuses returns a snapshot of every trigger in insertion order.
func (g *Group) Statuses() []Status {
	triggers := g.Triggers()
	out := make([]Status, 0, len(triggers))
	for _, t := range triggers {
		out = append(out, t.Status())
	}
	return out
}

// Len returns the number of registered triggers.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Wait blocks until every running trigger has exited.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Stop cancels every trigger, waits for them to exit and releases their
// coordinators. The group is empty afterwards.
func (g *Group) Stop() {
	g.mu.Lock()
	members := make([]*member, 0, len(g.order))
	for _, id := range g.order {
		members = append(members, g.members[id])
	}
	g.members = make(map[string]*member)
	g.order = nil
	g.mu.Unlock()

	for _, m := range members {
		g.stop(m)
	}
	g.wg.Wait()
}

// Status returns a snapshot of the trigger registered under id.
func (g *Group) Status(id string) (Status, error) {
	t, err := g.Get(id)
	if err != nil {
		return Status{}, err
	}
	return t.Status(), nil
}

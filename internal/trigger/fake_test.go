package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/layout"
)

type fakeElement struct {
	emu     sync.Mutex
	id      string
	set     []layout.Layout
	adapted []layout.Layout
}

func newFakeElement(id string) *fakeElement {
	return &fakeElement{id: id}
}

func (e *fakeElement) ID() string { return e.id }

func (e *fakeElement) SetLayout(l layout.Layout) {
	e.emu.Lock()
	defer e.emu.Unlock()
	e.set = append(e.set, l)
}

func (e *fakeElement) Adapt(l layout.Layout) {
	e.emu.Lock()
	defer e.emu.Unlock()
	e.adapted = append(e.adapted, l)
}

func (e *fakeElement) adaptCount() int {
	e.emu.Lock()
	defer e.emu.Unlock()
	return len(e.adapted)
}

func (e *fakeElement) lastAdapted() layout.Layout {
	e.emu.Lock()
	defer e.emu.Unlock()
	return e.adapted[len(e.adapted)-1]
}

// fakeCoordinator is a scriptable Coordinator.
type fakeCoordinator struct {
	fakeElement

	mu         sync.Mutex
	active     bool
	adapting   bool
	global     bool
	elements   []Element
	cost       float64
	costErr    error
	costCalls  int
	asyncReady bool
	optLayouts []layout.Layout
	optCost    float64
	optErr     error
	optCalls   int
	steps      []layout.Step
	stepCalls  int
	onStep     func(n int)
	stepCtxs   []context.Context
	owner      string
}

func newFakeCoordinator(id string, global bool, elementIDs ...string) *fakeCoordinator {
	c := &fakeCoordinator{
		fakeElement: fakeElement{id: id},
		active:      true,
		global:      global,
		asyncReady:  true,
	}
	for _, eid := range elementIDs {
		c.elements = append(c.elements, newFakeElement(eid))
	}
	return c
}

func (c *fakeCoordinator) ActiveAndEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *fakeCoordinator) IsAdapting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapting
}

func (c *fakeCoordinator) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

func (c *fakeCoordinator) setAdapting(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapting = v
}

func (c *fakeCoordinator) IsGlobal() bool { return c.global }

func (c *fakeCoordinator) Elements() []Element { return c.elements }

func (c *fakeCoordinator) ComputeCost(context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.costCalls++
	return c.cost, c.costErr
}

func (c *fakeCoordinator) ComputeCostAsync() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.costCalls++
	return c.cost, c.asyncReady
}

func (c *fakeCoordinator) OptimizeLayout(context.Context) ([]layout.Layout, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.optCalls++
	return c.optLayouts, c.optCost, c.optErr
}

// OptimizeLayoutStep replays the scripted steps, repeating the last one.
func (c *fakeCoordinator) OptimizeLayoutStep(ctx context.Context) layout.Step {
	c.mu.Lock()
	c.stepCalls++
	c.stepCtxs = append(c.stepCtxs, ctx)
	n := c.stepCalls
	var s layout.Step
	if len(c.steps) > 0 {
		i := min(n-1, len(c.steps)-1)
		s = c.steps[i]
	}
	hook := c.onStep
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return s
}

func (c *fakeCoordinator) lastStepCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepCtxs[len(c.stepCtxs)-1]
}

func (c *fakeCoordinator) counts() (cost, opt, step int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.costCalls, c.optCalls, c.stepCalls
}

func (c *fakeCoordinator) Claim(owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != "" && c.owner != owner {
		return errors.ErrCoordinatorClaimed
	}
	c.owner = owner
	return nil
}

func (c *fakeCoordinator) Release(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == owner {
		c.owner = ""
	}
}

// manualClock advances instantly on every suspension point.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	frame   time.Duration
	sleeps  []time.Duration
	frames  int
	onSleep func(n int)
	onFrame func(n int)
}

func newManualClock(frame time.Duration) *manualClock {
	return &manualClock{
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		frame: frame,
	}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	n := len(c.sleeps)
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *manualClock) NextFrame(ctx context.Context) error {
	c.mu.Lock()
	c.now = c.now.Add(c.frame)
	c.frames++
	n := c.frames
	hook := c.onFrame
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return ctx.Err()
}

func (c *manualClock) sleepLog() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// recorder collects every event published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func newRecorder(bus *event.Bus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(e event.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *recorder) ofType(eventType string) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

func layoutsFor(ids ...string) []layout.Layout {
	out := make([]layout.Layout, 0, len(ids))
	for i, id := range ids {
		out = append(out, layout.New(id, layout.Vec3{X: float64(i + 1)}))
	}
	return out
}

package adaptation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/layout"
	"github.com/Iron-Ham/adaptui/internal/logging"
	"github.com/Iron-Ham/adaptui/internal/trigger"
)

// Applier makes a layout visible. Apply may take as long as the change
// needs to animate; the manager reports IsAdapting until it returns.
type Applier interface {
	Apply(ctx context.Context, elementID string, l layout.Layout) error
}

// Manager coordinates adaptation for one element or, in global scope, for
// a fixed ordered set of elements.
type Manager struct {
	id          string
	global      bool
	elements    []*Element
	objectives  int
	evaluator   layout.Evaluator
	optimizer   layout.Optimizer
	incremental layout.IncrementalOptimizer
	applier     Applier
	logger      *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	active   atomic.Bool
	adapting atomic.Int32
	applies  conc.WaitGroup
	work     conc.WaitGroup

	mu      sync.Mutex
	layout  layout.Layout
	owner   string
	session layout.Session

	costMu      sync.Mutex
	costPending bool
	costReady   bool
	costValue   float64
}

var (
	_ trigger.Coordinator = (*Manager)(nil)
	_ trigger.Claimer     = (*Manager)(nil)
	_ trigger.Element     = (*Element)(nil)
)

// Option configures a Manager.
type Option func(*Manager)

// WithElements puts the manager in global scope over one element per
// layout, in the given order.
func WithElements(layouts ...layout.Layout) Option {
	return func(m *Manager) {
		m.global = true
		m.elements = m.elements[:0]
		for _, l := range layouts {
			m.elements = append(m.elements, &Element{id: l.ElementID, mgr: m, layout: l})
		}
	}
}

// WithLayout sets the initial layout of a local-scope manager.
func WithLayout(l layout.Layout) Option {
	return func(m *Manager) {
		m.layout = l
	}
}

// WithObjectives sets the objective count passed to the optimizer.
func WithObjectives(n int) Option {
	return func(m *Manager) {
		m.objectives = n
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates an active manager. Without WithElements it manages
// the single element id in local scope.
func NewManager(id string, evaluator layout.Evaluator, optimizer layout.Optimizer, applier Applier, opts ...Option) (*Manager, error) {
	if id == "" {
		return nil, errors.NewValidationError("manager id is required").WithField("id")
	}
	if evaluator == nil || optimizer == nil || applier == nil {
		return nil, errors.NewValidationError("evaluator, optimizer and applier are required").WithField("manager")
	}

	m := &Manager{
		id:         id,
		objectives: 1,
		evaluator:  evaluator,
		optimizer:  optimizer,
		applier:    applier,
	}
	m.layout = layout.New(id, layout.Vec3{})
	for _, opt := range opts {
		opt(m)
	}
	if m.global && len(m.elements) == 0 {
		return nil, errors.ErrNoLayouts
	}
	seen := make(map[string]bool, len(m.elements))
	for _, e := range m.elements {
		if e.id == "" || seen[e.id] {
			return nil, errors.NewValidationError("element ids must be unique and non-empty").
				WithField("element_id").WithValue(e.id)
		}
		seen[e.id] = true
	}
	if m.incremental == nil {
		if inc, ok := optimizer.(layout.IncrementalOptimizer); ok {
			m.incremental = inc
		}
	}
	if m.logger == nil {
		m.logger = logging.NopLogger()
	}
	m.logger = m.logger.WithComponent("adaptation").With("manager_id", id)
	m.layout.ElementID = id

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.active.Store(true)
	return m, nil
}

// ID returns the manager ID.
func (m *Manager) ID() string { return m.id }

// IsGlobal reports whether the manager fans decisions out to its elements.
func (m *Manager) IsGlobal() bool { return m.global }

// ActiveAndEnabled reports whether the manager accepts adaptations.
func (m *Manager) ActiveAndEnabled() bool { return m.active.Load() }

// SetActive enables or pauses the manager.
func (m *Manager) SetActive(active bool) { m.active.Store(active) }

// IsAdapting reports whether any apply is still running.
func (m *Manager) IsAdapting() bool { return m.adapting.Load() > 0 }

// Elements returns the managed elements in order. It is empty in local
// scope.
func (m *Manager) Elements() []trigger.Element {
	out := make([]trigger.Element, len(m.elements))
	for i, e := range m.elements {
		out[i] = e
	}
	return out
}

// Layouts returns the current layouts: one per element in global scope,
// or the manager's own layout in local scope.
func (m *Manager) Layouts() []layout.Layout {
	if !m.global {
		m.mu.Lock()
		defer m.mu.Unlock()
		return []layout.Layout{m.layout}
	}
	out := make([]layout.Layout, len(m.elements))
	for i, e := range m.elements {
		out[i] = e.Layout()
	}
	return out
}

// SetLayout replaces the manager's own layout.
func (m *Manager) SetLayout(l layout.Layout) {
	l.ElementID = m.id
	m.mu.Lock()
	m.layout = l
	m.mu.Unlock()
	m.layoutChanged()
}

// Adapt applies l to the manager's own element.
func (m *Manager) Adapt(l layout.Layout) {
	l.ElementID = m.id
	m.apply(m.id, l)
}

func (m *Manager) apply(elementID string, l layout.Layout) {
	m.adapting.Add(1)
	m.applies.Go(func() {
		defer m.adapting.Add(-1)
		if err := m.applier.Apply(m.ctx, elementID, l); err != nil {
			m.logger.Warn("apply failed",
				"element_id", elementID,
				"error", errors.NewAdaptationError("apply layout", err).
					WithElement(elementID).
					WithPhase("apply"),
			)
			return
		}
		m.logger.Debug("layout adapted", "element_id", elementID, "layout", l.String())
	})
}

// layoutChanged invalidates the incremental session, which was seeded
// from the previous layouts.
func (m *Manager) layoutChanged() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
}

func (m *Manager) request() layout.Request {
	return layout.NewRequest(m.Layouts(), m.objectives)
}

// ComputeCost evaluates the current layouts.
func (m *Manager) ComputeCost(ctx context.Context) (float64, error) {
	cost, err := m.evaluator.Evaluate(ctx, m.Layouts())
	if err != nil {
		return 0, errors.NewAdaptationError("compute cost", err).WithPhase("evaluate")
	}
	return cost, nil
}

// ComputeCostAsync returns the last finished background evaluation and
// starts a fresh one when none is running. ok is false until the first
// evaluation has finished.
func (m *Manager) ComputeCostAsync() (float64, bool) {
	m.costMu.Lock()
	defer m.costMu.Unlock()

	if !m.costPending {
		m.refreshCost()
	}
	return m.costValue, m.costReady
}

// refreshCost evaluates the current layouts in the background. costMu
// must be held.
func (m *Manager) refreshCost() {
	m.costPending = true
	layouts := m.Layouts()
	m.work.Go(func() {
		cost, err := m.evaluator.Evaluate(m.ctx, layouts)

		m.costMu.Lock()
		defer m.costMu.Unlock()
		m.costPending = false
		if err != nil {
			m.logger.Warn("async cost evaluation failed", "error", err)
			return
		}
		m.costValue = cost
		m.costReady = true
	})
}

// OptimizeLayout runs a full search from the current layouts.
func (m *Manager) OptimizeLayout(ctx context.Context) ([]layout.Layout, float64, error) {
	res, err := m.optimizer.Optimize(ctx, m.request())
	if err != nil {
		return nil, 0, errors.NewAdaptationError("optimize layout", err).WithPhase("optimize")
	}
	return res.Layouts, res.Cost, nil
}

// OptimizeLayoutStep advances the incremental session by one step,
// starting one from the current layouts when none is open. A converged
// session is closed so the next step starts afresh. The step stops early
// when ctx ends or the manager is closed.
func (m *Manager) OptimizeLayoutStep(ctx context.Context) layout.Step {
	if m.incremental == nil || m.ctx.Err() != nil {
		return layout.Step{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	m.mu.Lock()
	session := m.session
	m.mu.Unlock()
	if session == nil {
		session = m.incremental.Begin(ctx, m.request())
		if ctx.Err() != nil {
			return layout.Step{}
		}
		m.mu.Lock()
		m.session = session
		m.mu.Unlock()
	}

	step := session.Step(ctx)
	if step.Converged {
		m.mu.Lock()
		if m.session == session {
			m.session = nil
		}
		m.mu.Unlock()
	}
	return step
}

// Claim records owner as the manager's single trigger.
func (m *Manager) Claim(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner != "" && m.owner != owner {
		return errors.Wrapf(errors.ErrCoordinatorClaimed, "manager %q owned by %q", m.id, m.owner)
	}
	m.owner = owner
	return nil
}

// Release drops owner's claim.
func (m *Manager) Release(owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner == owner {
		m.owner = ""
	}
}

// Owner returns the claiming trigger's ID, or "" when unclaimed.
func (m *Manager) Owner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Wait blocks until every in-flight apply has finished.
func (m *Manager) Wait() {
	m.applies.Wait()
}

// Close cancels in-flight applies and evaluations and waits for them.
func (m *Manager) Close() {
	m.active.Store(false)
	m.cancel()
	m.applies.Wait()
	m.work.Wait()
}

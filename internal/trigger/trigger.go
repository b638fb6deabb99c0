package trigger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/logging"
)

// Stop reasons reported on trigger.stopped events.
const (
	StopDisabled = "disabled"
	StopCanceled = "canceled"
)

// Trigger is a continuous adaptation trigger bound to one coordinator.
type Trigger struct {
	id     string
	coord  Coordinator
	cfg    Config
	policy Policy
	clock  Clock
	bus    *event.Bus
	logger *logging.Logger

	enabled    atomic.Bool
	attempting atomic.Bool
	attempts   conc.WaitGroup

	mu           sync.Mutex
	previousCost float64
	hasCost      bool
	attemptStart  time.Time
	cancelAttempt context.CancelFunc
	stats         Stats
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithClock sets the clock the trigger sleeps and polls with.
func WithClock(c Clock) Option {
	return func(t *Trigger) {
		t.clock = c
	}
}

// WithBus sets the bus decisions are published on.
func WithBus(b *event.Bus) Option {
	return func(t *Trigger) {
		t.bus = b
	}
}

// WithLogger sets the trigger's logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Trigger) {
		t.logger = l
	}
}

// WithID overrides the trigger ID, which defaults to the coordinator's ID.
func WithID(id string) Option {
	return func(t *Trigger) {
		t.id = id
	}
}

// New creates an enabled trigger for coord. If coord implements Claimer,
// New claims it and fails when another trigger already owns it.
func New(coord Coordinator, cfg Config, opts ...Option) (*Trigger, error) {
	if coord == nil {
		return nil, errors.NewValidationError("coordinator is required").WithField("coordinator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Trigger{
		id:     coord.ID(),
		coord:  coord,
		cfg:    cfg,
		policy: NewPolicy(cfg),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = NewClock(t.cfg.FrameInterval)
	}
	if t.bus == nil {
		t.bus = event.NewBus(t.logger)
	}
	if t.logger == nil {
		t.logger = logging.NopLogger()
	}
	t.logger = t.logger.WithTrigger(t.id)

	if c, ok := coord.(Claimer); ok {
		if err := c.Claim(t.id); err != nil {
			return nil, errors.NewAdaptationError("claim coordinator", err).
				WithTrigger(t.id).
				WithPhase("claim").
				WithRetryable(false)
		}
	}

	t.enabled.Store(true)
	return t, nil
}

// ID returns the trigger ID.
func (t *Trigger) ID() string { return t.id }

// Config returns the trigger's settings.
func (t *Trigger) Config() Config { return t.cfg }

// Enabled reports whether the trigger is still running.
func (t *Trigger) Enabled() bool { return t.enabled.Load() }

// Disable stops the trigger cooperatively. The loop observes it at its next
// iteration and an in-flight attempt at its next frame boundary. A running
// optimizer step is canceled.
func (t *Trigger) Disable() {
	if t.enabled.CompareAndSwap(true, false) {
		t.logger.Info("trigger disabled")
	}
	t.mu.Lock()
	cancel := t.cancelAttempt
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetActive pauses or resumes the coordinator. Ticks against a paused
// coordinator are counted but do nothing; the loop keeps running.
func (t *Trigger) SetActive(active bool) error {
	p, ok := t.coord.(Pauser)
	if !ok {
		return errors.NewValidationError("coordinator cannot be paused").
			WithField("trigger_id").WithValue(t.id)
	}
	p.SetActive(active)
	t.logger.Info("coordinator activity changed", "active", active)
	return nil
}

// Close disables the trigger, waits for any in-flight attempt and releases
// the coordinator claim.
func (t *Trigger) Close() {
	t.Disable()
	t.attempts.Wait()
	if c, ok := t.coord.(Claimer); ok {
		c.Release(t.id)
	}
}

// WaitIdle blocks until no asynchronous attempt is in flight.
func (t *Trigger) WaitIdle() {
	t.attempts.Wait()
}

// Run drives the trigger until it is disabled or ctx is canceled. It waits
// the settle delay, then ticks once per period. Run returns nil when the
// trigger was disabled and ctx.Err() when it was canceled.
func (t *Trigger) Run(ctx context.Context) error {
	defer t.attempts.Wait()

	t.bus.Publish(event.NewTriggerStartedEvent(t.id, t.cfg.RunAsynchronous, t.coord.IsGlobal()))
	t.logger.Info("trigger started",
		"mode", t.cfg.Mode(),
		"global", t.coord.IsGlobal(),
		"optimization_threshold", t.cfg.OptimizationThreshold,
		"adaptation_threshold", t.cfg.AdaptationThreshold,
	)

	if err := t.clock.Sleep(ctx, t.cfg.SettleDelay); err != nil {
		return t.stopped(StopCanceled, err)
	}

	for {
		if !t.Enabled() {
			return t.stopped(StopDisabled, nil)
		}
		t.Tick(ctx)
		if err := t.clock.Sleep(ctx, t.cfg.Period); err != nil {
			return t.stopped(StopCanceled, err)
		}
	}
}

func (t *Trigger) stopped(reason string, err error) error {
	t.bus.Publish(event.NewTriggerStoppedEvent(t.id, reason))
	t.logger.Info("trigger stopped", "reason", reason)
	return err
}

// Tick runs one evaluation pass. It never blocks on an asynchronous
// attempt; in asynchronous mode it launches one when none is in flight.
func (t *Trigger) Tick(ctx context.Context) {
	t.mu.Lock()
	t.stats.Ticks++
	t.mu.Unlock()

	if !t.coord.ActiveAndEnabled() {
		return
	}
	if t.cfg.RunAsynchronous && t.attempting.Load() {
		return
	}
	if !t.ShouldOptimize(ctx) {
		return
	}

	t.mu.Lock()
	t.stats.Optimizations++
	t.mu.Unlock()

	if !t.cfg.RunAsynchronous {
		t.optimizeSync(ctx)
		return
	}

	if !t.attempting.CompareAndSwap(false, true) {
		return
	}
	attemptID := uuid.NewString()
	t.attempts.Go(func() {
		defer t.attempting.Store(false)
		t.waitForOptimizedLayout(ctx, attemptID)
	})
}

// ShouldOptimize samples the cost, records it as the previous cost and
// reports whether an optimization should run. In asynchronous mode a
// cost that is not ready yet skips the tick.
func (t *Trigger) ShouldOptimize(ctx context.Context) bool {
	var cost float64
	if t.cfg.RunAsynchronous {
		c, ok := t.coord.ComputeCostAsync()
		if !ok {
			t.logger.Debug("cost not ready")
			return false
		}
		cost = c
	} else {
		c, err := t.coord.ComputeCost(ctx)
		if err != nil {
			t.logger.Warn("cost evaluation failed", "error", err)
			return false
		}
		cost = c
	}

	t.mu.Lock()
	t.previousCost = cost
	t.hasCost = true
	t.mu.Unlock()

	d := t.policy.Evaluate(cost, t.Enabled(), t.coord.IsAdapting())
	optimize := d.Action == ActionOptimize
	t.bus.Publish(event.NewTriggerEvaluatedEvent(t.id, cost, optimize, d.Reason))
	t.logger.Debug("cost evaluated", "cost", cost, "action", d.Action, "reason", d.Reason)
	return optimize
}

// PreviousCost returns the last sampled cost. ok is false before the first
// sample.
func (t *Trigger) PreviousCost() (cost float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previousCost, t.hasCost
}

// Status returns a snapshot of the trigger.
func (t *Trigger) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{
		ID:           t.id,
		Enabled:      t.Enabled(),
		Paused:       !t.coord.ActiveAndEnabled(),
		Mode:         t.cfg.Mode(),
		Global:       t.coord.IsGlobal(),
		Attempting:   t.attempting.Load(),
		HasCost:      t.hasCost,
		PreviousCost: t.previousCost,
		AttemptStart: t.attemptStart,
		Stats:        t.stats,
	}
}

func (t *Trigger) optimizeSync(ctx context.Context) {
	attemptID := uuid.NewString()
	t.bus.Publish(event.NewOptimizationStartedEvent(t.id, attemptID, false))

	layouts, cost, err := t.coord.OptimizeLayout(ctx)
	if err != nil {
		t.logger.Warn("optimization failed", "attempt_id", attemptID, "error", err)
		return
	}

	previous, _ := t.PreviousCost()
	d := t.policy.Accept(previous, cost)
	t.logger.Debug("cost diff",
		"attempt_id", attemptID,
		"previous_cost", previous,
		"cost", cost,
		"delta", d.Delta,
	)

	if d.Action != ActionAdapt {
		t.reject(attemptID, previous, cost, d.Reason)
		return
	}
	t.dispatch(attemptID, false, previous, cost, layouts)
}

func (t *Trigger) reject(attemptID string, previous, cost float64, reason string) {
	t.mu.Lock()
	t.stats.Rejected++
	t.mu.Unlock()
	t.bus.Publish(event.NewLayoutRejectedEvent(t.id, attemptID, previous, cost, reason))
}

func (t *Trigger) abandon(attemptID string, reason event.AbandonReason, elapsed time.Duration, polls int) {
	t.mu.Lock()
	t.stats.Abandoned++
	t.mu.Unlock()
	t.bus.Publish(event.NewOptimizationAbandonedEvent(t.id, attemptID, reason, elapsed, polls))
	t.logger.Debug("optimization abandoned",
		"attempt_id", attemptID,
		"reason", string(reason),
		"elapsed", elapsed.String(),
		"polls", polls,
	)
}

// String returns the trigger's status line.
func (t *Trigger) String() string {
	return fmt.Sprint(t.Status())
}

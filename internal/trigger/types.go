package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/layout"
)

// Default configuration values.
const (
	DefaultOptimizationThreshold = 0.05
	DefaultAdaptationThreshold   = 0.1
	DefaultOptimizationTimeout   = 5 * time.Second
	DefaultSettleDelay           = 500 * time.Millisecond
	DefaultPeriod                = 500 * time.Millisecond
	DefaultFrameInterval         = 16 * time.Millisecond
)

// Element is a UI element that can receive a layout.
type Element interface {
	ID() string
	// SetLayout records l as the element's pending layout.
	SetLayout(l layout.Layout)
	// Adapt applies l to the visible element. It may return before the
	// change has finished animating.
	Adapt(l layout.Layout)
}

// Coordinator is the adaptation manager a trigger drives. In global scope
// a single decision fans out to every managed element; in local scope it
// applies to the coordinator itself.
type Coordinator interface {
	Element

	ActiveAndEnabled() bool
	// IsAdapting reports whether an adaptation is currently being applied.
	IsAdapting() bool
	IsGlobal() bool
	// Elements returns the managed elements in a fixed order.
	Elements() []Element

	// ComputeCost evaluates the current layout, blocking until done.
	ComputeCost(ctx context.Context) (float64, error)
	// ComputeCostAsync polls an asynchronous evaluation. ok is false
	// while no value is ready.
	ComputeCostAsync() (cost float64, ok bool)

	// OptimizeLayout runs a blocking full search. Layouts are ordered
	// like Elements in global scope.
	OptimizeLayout(ctx context.Context) ([]layout.Layout, float64, error)
	// OptimizeLayoutStep advances the incremental optimizer once. It
	// returns early with the progress so far when ctx ends.
	OptimizeLayoutStep(ctx context.Context) layout.Step
}

// Pauser is implemented by coordinators that can be paused without
// stopping their trigger.
type Pauser interface {
	SetActive(active bool)
}

// Claimer is implemented by coordinators that enforce a single owning
// trigger.
type Claimer interface {
	Claim(owner string) error
	Release(owner string)
}

// Config holds a trigger's immutable settings.
type Config struct {
	// RunAsynchronous spreads optimization across frames instead of
	// blocking the tick.
	RunAsynchronous bool
	// OptimizationThreshold is the cost at or below which no optimization
	// is attempted.
	OptimizationThreshold float64
	// AdaptationThreshold is the minimum cost improvement required to
	// apply a candidate.
	AdaptationThreshold float64
	// OptimizationTimeout bounds one asynchronous attempt.
	OptimizationTimeout time.Duration
	// SettleDelay is waited once before the first tick.
	SettleDelay time.Duration
	// Period is waited between ticks.
	Period time.Duration
	// FrameInterval is the frame slot an asynchronous attempt polls at.
	FrameInterval time.Duration
}

// DefaultConfig returns the stock trigger settings.
func DefaultConfig() Config {
	return Config{
		RunAsynchronous:       false,
		OptimizationThreshold: DefaultOptimizationThreshold,
		AdaptationThreshold:   DefaultAdaptationThreshold,
		OptimizationTimeout:   DefaultOptimizationTimeout,
		SettleDelay:           DefaultSettleDelay,
		Period:                DefaultPeriod,
		FrameInterval:         DefaultFrameInterval,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.OptimizationThreshold < 0:
		return errors.NewValidationError("must be non-negative").
			WithField("optimization_threshold").WithValue(c.OptimizationThreshold)
	case c.AdaptationThreshold < 0:
		return errors.NewValidationError("must be non-negative").
			WithField("adaptation_threshold").WithValue(c.AdaptationThreshold)
	case c.OptimizationTimeout <= 0:
		return errors.NewValidationError("must be positive").
			WithField("optimization_timeout").WithValue(c.OptimizationTimeout)
	case c.SettleDelay < 0:
		return errors.NewValidationError("must be non-negative").
			WithField("settle_delay").WithValue(c.SettleDelay)
	case c.Period <= 0:
		return errors.NewValidationError("must be positive").
			WithField("period").WithValue(c.Period)
	case c.FrameInterval < 0:
		return errors.NewValidationError("must be non-negative").
			WithField("frame_interval").WithValue(c.FrameInterval)
	}
	return nil
}

// Mode returns "async" or "sync".
func (c Config) Mode() string {
	if c.RunAsynchronous {
		return "async"
	}
	return "sync"
}

// Status is a point-in-time snapshot of a trigger.
type Status struct {
	ID           string    `json:"id"`
	Enabled      bool      `json:"enabled"`
	Paused       bool      `json:"paused"`
	Mode         string    `json:"mode"`
	Global       bool      `json:"global"`
	Attempting   bool      `json:"attempting"`
	HasCost      bool      `json:"has_cost"`
	PreviousCost float64   `json:"previous_cost"`
	AttemptStart time.Time `json:"attempt_start,omitzero"`
	Stats        Stats     `json:"stats"`
}

// Stats counts what a trigger has done since it was created.
type Stats struct {
	Ticks         int `json:"ticks"`
	Optimizations int `json:"optimizations"`
	Applied       int `json:"applied"`
	Rejected      int `json:"rejected"`
	Abandoned     int `json:"abandoned"`
}

// String summarizes the status on one line.
func (s Status) String() string {
	state := "enabled"
	switch {
	case !s.Enabled:
		state = "disabled"
	case s.Paused:
		state = "paused"
	}
	cost := "n/a"
	if s.HasCost {
		cost = fmt.Sprintf("%.4f", s.PreviousCost)
	}
	return fmt.Sprintf("%s [%s, %s] cost=%s applied=%d rejected=%d abandoned=%d",
		s.ID, s.Mode, state, cost, s.Stats.Applied, s.Stats.Rejected, s.Stats.Abandoned)
}

package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type identifiers.
const (
	TypeTriggerStarted        = "trigger.started"
	TypeTriggerStopped        = "trigger.stopped"
	TypeTriggerEvaluated      = "trigger.evaluated"
	TypeOptimizationStarted   = "optimization.started"
	TypeOptimizationAbandoned = "optimization.abandoned"
	TypeLayoutRejected        = "layout.rejected"
	TypeLayoutApplied         = "layout.applied"
)

// -----------------------------------------------------------------------------
// Trigger Lifecycle Events
// -----------------------------------------------------------------------------

// TriggerStartedEvent is emitted when a trigger loop begins.
type TriggerStartedEvent struct {
	baseEvent
	TriggerID    string
	Asynchronous bool
	Global       bool
}

// NewTriggerStartedEvent creates a TriggerStartedEvent.
func NewTriggerStartedEvent(triggerID string, async, global bool) TriggerStartedEvent {
	return TriggerStartedEvent{
		baseEvent:    newBaseEvent(TypeTriggerStarted),
		TriggerID:    triggerID,
		Asynchronous: async,
		Global:       global,
	}
}

// TriggerStoppedEvent is emitted when a trigger loop terminates.
type TriggerStoppedEvent struct {
	baseEvent
	TriggerID string
	Reason    string // "disabled" or "canceled"
}

// NewTriggerStoppedEvent creates a TriggerStoppedEvent.
func NewTriggerStoppedEvent(triggerID, reason string) TriggerStoppedEvent {
	return TriggerStoppedEvent{
		baseEvent: newBaseEvent(TypeTriggerStopped),
		TriggerID: triggerID,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Decision Events
// -----------------------------------------------------------------------------

// TriggerEvaluatedEvent is emitted after a tick samples the current cost.
type TriggerEvaluatedEvent struct {
	baseEvent
	TriggerID string
	Cost      float64
	Optimize  bool   // Whether the tick decided to optimize
	Reason    string // Why the decision was made
}

// NewTriggerEvaluatedEvent creates a TriggerEvaluatedEvent.
func NewTriggerEvaluatedEvent(triggerID string, cost float64, optimize bool, reason string) TriggerEvaluatedEvent {
	return TriggerEvaluatedEvent{
		baseEvent: newBaseEvent(TypeTriggerEvaluated),
		TriggerID: triggerID,
		Cost:      cost,
		Optimize:  optimize,
		Reason:    reason,
	}
}

// OptimizationStartedEvent is emitted when an optimize cycle begins.
type OptimizationStartedEvent struct {
	baseEvent
	TriggerID    string
	AttemptID    string
	Asynchronous bool
}

// NewOptimizationStartedEvent creates an OptimizationStartedEvent.
func NewOptimizationStartedEvent(triggerID, attemptID string, async bool) OptimizationStartedEvent {
	return OptimizationStartedEvent{
		baseEvent:    newBaseEvent(TypeOptimizationStarted),
		TriggerID:    triggerID,
		AttemptID:    attemptID,
		Asynchronous: async,
	}
}

// AbandonReason explains why an asynchronous attempt stopped without
// applying a layout.
type AbandonReason string

const (
	AbandonTimeout   AbandonReason = "timeout"
	AbandonDisabled  AbandonReason = "disabled"
	AbandonPreempted AbandonReason = "preempted"
	AbandonCanceled  AbandonReason = "canceled"
)

// OptimizationAbandonedEvent is emitted when an asynchronous attempt ends
// without dispatching.
type OptimizationAbandonedEvent struct {
	baseEvent
	TriggerID string
	AttemptID string
	Reason    AbandonReason
	Elapsed   time.Duration
	Polls     int
}

// NewOptimizationAbandonedEvent creates an OptimizationAbandonedEvent.
func NewOptimizationAbandonedEvent(triggerID, attemptID string, reason AbandonReason, elapsed time.Duration, polls int) OptimizationAbandonedEvent {
	return OptimizationAbandonedEvent{
		baseEvent: newBaseEvent(TypeOptimizationAbandoned),
		TriggerID: triggerID,
		AttemptID: attemptID,
		Reason:    reason,
		Elapsed:   elapsed,
		Polls:     polls,
	}
}

// LayoutRejectedEvent is emitted when a candidate is not applied, either
// because it falls inside the hysteresis band or because it could not be
// dispatched.
type LayoutRejectedEvent struct {
	baseEvent
	TriggerID    string
	AttemptID    string
	PreviousCost float64
	Cost         float64
	Reason       string
}

// NewLayoutRejectedEvent creates a LayoutRejectedEvent.
func NewLayoutRejectedEvent(triggerID, attemptID string, previousCost, cost float64, reason string) LayoutRejectedEvent {
	return LayoutRejectedEvent{
		baseEvent:    newBaseEvent(TypeLayoutRejected),
		TriggerID:    triggerID,
		AttemptID:    attemptID,
		PreviousCost: previousCost,
		Cost:         cost,
		Reason:       reason,
	}
}

// LayoutAppliedEvent is emitted after layouts are dispatched to elements.
type LayoutAppliedEvent struct {
	baseEvent
	TriggerID    string
	AttemptID    string
	Asynchronous bool
	Global       bool
	PreviousCost float64
	Cost         float64
	ElementIDs   []string
}

// Improvement returns how much the cost dropped.
func (e LayoutAppliedEvent) Improvement() float64 {
	return e.PreviousCost - e.Cost
}

// NewLayoutAppliedEvent creates a LayoutAppliedEvent.
func NewLayoutAppliedEvent(triggerID, attemptID string, async, global bool, previousCost, cost float64, elementIDs []string) LayoutAppliedEvent {
	return LayoutAppliedEvent{
		baseEvent:    newBaseEvent(TypeLayoutApplied),
		TriggerID:    triggerID,
		AttemptID:    attemptID,
		Asynchronous: async,
		Global:       global,
		PreviousCost: previousCost,
		Cost:         cost,
		ElementIDs:   elementIDs,
	}
}

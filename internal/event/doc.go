// Package event provides a pub-sub event bus that decouples adaptation
// triggers from the components observing them.
//
// # Main Types
//
//   - [Event]: interface providing EventType() and Timestamp()
//   - [Bus]: synchronous, thread-safe pub-sub dispatcher
//   - [Handler]: function type for event handlers
//
// # Event Categories
//
// Trigger lifecycle:
//   - [TriggerStartedEvent], [TriggerStoppedEvent]
//
// Decisions:
//   - [TriggerEvaluatedEvent]: a tick sampled the cost
//   - [OptimizationStartedEvent]: an optimize cycle began
//   - [OptimizationAbandonedEvent]: an asynchronous attempt stopped without applying
//   - [LayoutRejectedEvent]: a candidate fell inside the hysteresis band
//   - [LayoutAppliedEvent]: layouts were dispatched to elements
//
// # Thread Safety
//
// Handlers are called synchronously on the publishing goroutine. A
// panicking handler is logged and does not block delivery to the others.
// Handlers must not block: triggers publish from their loop.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeLayoutApplied, func(e event.Event) {
//	    applied := e.(event.LayoutAppliedEvent)
//	    fmt.Println(applied.TriggerID, applied.Improvement())
//	})
package event

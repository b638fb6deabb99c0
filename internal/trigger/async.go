package trigger

import (
	"context"
	"time"

	"github.com/Iron-Ham/adaptui/internal/event"
)

// waitForOptimizedLayout polls the incremental optimizer once per frame
// until a candidate clears the adaptation threshold or the attempt ends.
// Acceptance compares against the previous cost reported by the optimizer
// at poll time, not the cost the trigger sampled.
func (t *Trigger) waitForOptimizedLayout(ctx context.Context, attemptID string) {
	start := t.clock.Now()
	t.mu.Lock()
	t.attemptStart = start
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.attemptStart = time.Time{}
		t.mu.Unlock()
	}()

	// The optimizer's own work is bounded by the timeout in wall time and
	// by Disable, in addition to the frame checks below.
	stepCtx, cancel := context.WithTimeout(ctx, t.cfg.OptimizationTimeout)
	defer cancel()
	t.mu.Lock()
	t.cancelAttempt = cancel
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.cancelAttempt = nil
		t.mu.Unlock()
	}()

	t.bus.Publish(event.NewOptimizationStartedEvent(t.id, attemptID, true))

	polls := 0
	for {
		elapsed := t.clock.Now().Sub(start)
		switch {
		case !t.Enabled():
			t.abandon(attemptID, event.AbandonDisabled, elapsed, polls)
			return
		case elapsed >= t.cfg.OptimizationTimeout:
			t.abandon(attemptID, event.AbandonTimeout, elapsed, polls)
			return
		case t.coord.IsAdapting():
			t.abandon(attemptID, event.AbandonPreempted, elapsed, polls)
			return
		}

		step := t.coord.OptimizeLayoutStep(stepCtx)
		polls++
		if step.HasCandidate() {
			d := t.policy.Accept(step.PreviousCost, step.Cost)
			if d.Action == ActionAdapt {
				t.logger.Debug("cost diff",
					"attempt_id", attemptID,
					"previous_cost", step.PreviousCost,
					"cost", step.Cost,
					"delta", d.Delta,
					"polls", polls,
				)
				t.dispatch(attemptID, true, step.PreviousCost, step.Cost, step.Layouts)
				return
			}
		}

		if err := t.clock.NextFrame(ctx); err != nil {
			t.abandon(attemptID, event.AbandonCanceled, t.clock.Now().Sub(start), polls)
			return
		}
	}
}

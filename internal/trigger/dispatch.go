package trigger

import (
	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/layout"
)

// dispatch applies an accepted candidate. In global scope each managed
// element receives its own layout; in local scope the coordinator receives
// layouts[0]. A candidate that cannot be aligned with the managed elements
// is rejected and nothing is applied.
func (t *Trigger) dispatch(attemptID string, async bool, previous, cost float64, layouts []layout.Layout) {
	if len(layouts) == 0 {
		t.dispatchFailed(attemptID, previous, cost, errors.ErrNoLayouts)
		return
	}

	global := t.coord.IsGlobal()
	var applied []string
	if global {
		elements := t.coord.Elements()
		aligned, err := Align(elements, layouts)
		if err != nil {
			t.dispatchFailed(attemptID, previous, cost, err)
			return
		}
		applied = make([]string, 0, len(elements))
		for i, el := range elements {
			el.SetLayout(aligned[i])
			el.Adapt(aligned[i])
			applied = append(applied, el.ID())
		}
	} else {
		t.coord.SetLayout(layouts[0])
		t.coord.Adapt(layouts[0])
		applied = []string{t.coord.ID()}
	}

	t.mu.Lock()
	t.stats.Applied++
	t.mu.Unlock()

	t.bus.Publish(event.NewLayoutAppliedEvent(t.id, attemptID, async, global, previous, cost, applied))
	t.logger.Info("layout applied",
		"attempt_id", attemptID,
		"previous_cost", previous,
		"cost", cost,
		"elements", len(applied),
	)
}

func (t *Trigger) dispatchFailed(attemptID string, previous, cost float64, err error) {
	t.logger.Error("dispatch failed",
		"attempt_id", attemptID,
		"error", errors.NewAdaptationError("dispatch", err).
			WithTrigger(t.id).
			WithPhase("dispatch").
			WithSeverity(errors.SeverityError),
	)
	t.reject(attemptID, previous, cost, err.Error())
}

// Align orders layouts to match elements. When every layout names an
// element and the names cover elements exactly, layouts are resolved by
// element ID; otherwise they are taken positionally. Either way the counts
// must match.
func Align(elements []Element, layouts []layout.Layout) ([]layout.Layout, error) {
	if len(layouts) != len(elements) {
		return nil, errors.Wrapf(errors.ErrLayoutCountMismatch,
			"%d layouts for %d elements", len(layouts), len(elements))
	}

	byID := make(map[string]layout.Layout, len(layouts))
	for _, l := range layouts {
		if l.ElementID == "" {
			return layouts, nil
		}
		byID[l.ElementID] = l
	}
	if len(byID) != len(layouts) {
		return layouts, nil
	}

	aligned := make([]layout.Layout, len(elements))
	for i, el := range elements {
		l, ok := byID[el.ID()]
		if !ok {
			return layouts, nil
		}
		aligned[i] = l
	}
	return aligned, nil
}

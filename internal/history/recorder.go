package history

import (
	"sync"

	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/logging"
)

// Recorder writes every layout.applied event on a bus to a Store.
type Recorder struct {
	store  Store
	bus    *event.Bus
	logger *logging.Logger

	mu    sync.Mutex
	subID string
}

// NewRecorder creates a recorder. Call Start to begin recording.
func NewRecorder(store Store, bus *event.Bus, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Recorder{store: store, bus: bus, logger: logger.WithComponent("history")}
}

// Start subscribes to the bus. Calling it twice has no effect.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subID != "" {
		return
	}
	r.subID = r.bus.Subscribe(event.TypeLayoutApplied, r.handleApplied)
}

// Stop unsubscribes from the bus. It is safe to call Stop even if Start
// was never called.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subID != "" {
		r.bus.Unsubscribe(r.subID)
		r.subID = ""
	}
}

func (r *Recorder) handleApplied(e event.Event) {
	applied, ok := e.(event.LayoutAppliedEvent)
	if !ok {
		return
	}
	rec := FromEvent(applied)
	if err := r.store.Put(rec); err != nil {
		r.logger.Warn("failed to record adaptation",
			"trigger_id", rec.TriggerID,
			"attempt_id", rec.AttemptID,
			"error", err,
		)
		return
	}
	r.logger.Debug("adaptation recorded", "record_id", rec.ID, "trigger_id", rec.TriggerID)
}

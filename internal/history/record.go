package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/adaptui/internal/event"
)

// Record is one applied adaptation.
type Record struct {
	ID           string    `json:"id"`
	TriggerID    string    `json:"trigger_id"`
	AttemptID    string    `json:"attempt_id"`
	Mode         string    `json:"mode"`
	Global       bool      `json:"global"`
	PreviousCost float64   `json:"previous_cost"`
	Cost         float64   `json:"cost"`
	ElementIDs   []string  `json:"element_ids"`
	AppliedAt    time.Time `json:"applied_at"`
}

// FromEvent builds a record with a fresh ID from a layout.applied event.
func FromEvent(e event.LayoutAppliedEvent) Record {
	mode := "sync"
	if e.Asynchronous {
		mode = "async"
	}
	return Record{
		ID:           uuid.NewString(),
		TriggerID:    e.TriggerID,
		AttemptID:    e.AttemptID,
		Mode:         mode,
		Global:       e.Global,
		PreviousCost: e.PreviousCost,
		Cost:         e.Cost,
		ElementIDs:   append([]string(nil), e.ElementIDs...),
		AppliedAt:    e.Timestamp().UTC(),
	}
}

// Improvement returns how much the cost dropped.
func (r Record) Improvement() float64 {
	return r.PreviousCost - r.Cost
}

// Store persists records. List returns the newest records first; a
// non-positive limit returns all of them.
type Store interface {
	Put(r Record) error
	Get(id string) (Record, error)
	List(limit int) ([]Record, error)
	Count() (int, error)
	Close() error
}

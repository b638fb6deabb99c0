// Package internal contains integration tests that verify the adaptation
// packages work together. These tests drive real triggers over simulated
// scenes and check what reaches the event bus, the elements and the history.
package internal

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/adaptui/internal/adaptation"
	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/history"
	"github.com/Iron-Ham/adaptui/internal/layout"
	"github.com/Iron-Ham/adaptui/internal/sim"
	"github.com/Iron-Ham/adaptui/internal/trigger"
)

// eventLog collects every event published on a bus.
type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) record(e event.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(eventType string) []event.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []event.Event
	for _, e := range l.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// appliedIDs records which elements received a layout.
type appliedIDs struct {
	mu  sync.Mutex
	ids map[string]int
}

func (a *appliedIDs) Apply(_ context.Context, elementID string, _ layout.Layout) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ids == nil {
		a.ids = make(map[string]int)
	}
	a.ids[elementID]++
	return nil
}

func (a *appliedIDs) count(id string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ids[id]
}

func fastTriggerConfig(async bool) trigger.Config {
	cfg := trigger.DefaultConfig()
	cfg.RunAsynchronous = async
	cfg.SettleDelay = 0
	cfg.Period = time.Millisecond
	cfg.FrameInterval = time.Millisecond
	return cfg
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// TestLocalTriggersShareBus runs one trigger per element on a shared bus and
// verifies each dispatch only touches its own element.
func TestLocalTriggersShareBus(t *testing.T) {
	scene, req := sim.Generate(3, 2.0, 7)
	eval := sim.NewEvaluator(scene, 0)
	applier := &appliedIDs{}

	bus := event.NewBus(nil)
	var log eventLog
	bus.SubscribeAll(log.record)

	store := history.NewMemoryStore()
	recorder := history.NewRecorder(store, bus, nil)
	recorder.Start()
	defer recorder.Stop()

	group := trigger.NewGroup(nil)
	var managers []*adaptation.Manager
	for i, l := range req.InitialLayout {
		m, err := adaptation.NewManager(l.ElementID, eval,
			sim.NewRandomSearch(eval, uint64(i+1), sim.WithIterations(200)),
			applier, adaptation.WithLayout(l))
		if err != nil {
			t.Fatalf("NewManager(%s) error = %v", l.ElementID, err)
		}
		defer m.Close()
		managers = append(managers, m)

		tr, err := trigger.New(m, fastTriggerConfig(false), trigger.WithID(m.ID()), trigger.WithBus(bus))
		if err != nil {
			t.Fatalf("trigger.New(%s) error = %v", m.ID(), err)
		}
		if err := group.Add(tr); err != nil {
			t.Fatalf("Add(%s) error = %v", m.ID(), err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group.Start(ctx)

	eventually(t, func() bool {
		for _, m := range managers {
			if applier.count(m.ID()) == 0 {
				return false
			}
		}
		return true
	})
	group.Stop()
	for _, m := range managers {
		m.Wait()
	}

	if got := len(log.ofType(event.TypeTriggerStarted)); got != 3 {
		t.Errorf("started events = %d, want 3", got)
	}
	stopped := log.ofType(event.TypeTriggerStopped)
	if len(stopped) != 3 {
		t.Fatalf("stopped events = %d, want 3", len(stopped))
	}
	for _, e := range stopped {
		if reason := e.(event.TriggerStoppedEvent).Reason; reason != trigger.StopCanceled {
			t.Errorf("stop reason = %q, want %q", reason, trigger.StopCanceled)
		}
	}

	for _, e := range log.ofType(event.TypeLayoutApplied) {
		applied := e.(event.LayoutAppliedEvent)
		if applied.Global || applied.Asynchronous {
			t.Errorf("applied event %+v should be local and synchronous", applied)
		}
		if !slices.Equal(applied.ElementIDs, []string{applied.TriggerID}) {
			t.Errorf("trigger %s dispatched to %v", applied.TriggerID, applied.ElementIDs)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if want := len(log.ofType(event.TypeLayoutApplied)); n != want {
		t.Errorf("history records = %d, want %d", n, want)
	}
}

// TestDisableStopsOnlyThatTrigger disables one trigger in a running group.
func TestDisableStopsOnlyThatTrigger(t *testing.T) {
	scene, req := sim.Generate(2, 2.0, 3)
	eval := sim.NewEvaluator(scene, 0)

	bus := event.NewBus(nil)
	var log eventLog
	bus.Subscribe(event.TypeTriggerStopped, log.record)

	group := trigger.NewGroup(nil)
	defer group.Stop()
	for i, l := range req.InitialLayout {
		m, err := adaptation.NewManager(l.ElementID, eval,
			sim.NewRandomSearch(eval, uint64(i+1), sim.WithIterations(50)),
			&appliedIDs{}, adaptation.WithLayout(l))
		if err != nil {
			t.Fatal(err)
		}
		defer m.Close()
		tr, err := trigger.New(m, fastTriggerConfig(false), trigger.WithID(m.ID()), trigger.WithBus(bus))
		if err != nil {
			t.Fatal(err)
		}
		if err := group.Add(tr); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group.Start(ctx)

	target := req.InitialLayout[0].ElementID
	if err := group.Disable(target); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}

	eventually(t, func() bool { return len(log.ofType(event.TypeTriggerStopped)) == 1 })
	stopped := log.ofType(event.TypeTriggerStopped)[0].(event.TriggerStoppedEvent)
	if stopped.TriggerID != target || stopped.Reason != trigger.StopDisabled {
		t.Errorf("stopped = %+v, want %s disabled", stopped, target)
	}

	other, err := group.Status(req.InitialLayout[1].ElementID)
	if err != nil {
		t.Fatal(err)
	}
	if !other.Enabled {
		t.Error("the other trigger should still be enabled")
	}
}

// TestAsyncGlobalTriggerPersistsHistory runs an asynchronous global trigger
// and reads the applied layouts back from a reopened bbolt database.
func TestAsyncGlobalTriggerPersistsHistory(t *testing.T) {
	scene, req := sim.Generate(4, 2.0, 11)
	eval := sim.NewEvaluator(scene, 0)
	applier := &appliedIDs{}

	m, err := adaptation.NewManager("global", eval,
		sim.NewRandomSearch(eval, 5, sim.WithIterations(300), sim.WithBatch(10)),
		applier, adaptation.WithElements(req.InitialLayout...))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	path := filepath.Join(t.TempDir(), history.DefaultFileName)
	store, err := history.OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}

	bus := event.NewBus(nil)
	recorder := history.NewRecorder(store, bus, nil)
	recorder.Start()

	tr, err := trigger.New(m, fastTriggerConfig(true), trigger.WithID(m.ID()), trigger.WithBus(bus))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	eventually(t, func() bool {
		n, _ := store.Count()
		return n > 0
	})
	cancel()
	<-done
	tr.Close()
	m.Wait()
	recorder.Stop()
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, l := range req.InitialLayout {
		if applier.count(l.ElementID) == 0 {
			t.Errorf("element %s never received a layout", l.ElementID)
		}
	}

	reopened, err := history.OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("no records after reopen")
	}
	r := records[0]
	if r.TriggerID != "global" || r.Mode != "async" || !r.Global {
		t.Errorf("record = %+v, want global async", r)
	}
	if len(r.ElementIDs) != len(req.InitialLayout) {
		t.Errorf("record elements = %v, want %d", r.ElementIDs, len(req.InitialLayout))
	}
	if r.Improvement() <= trigger.DefaultAdaptationThreshold {
		t.Errorf("Improvement() = %v, want > %v", r.Improvement(), trigger.DefaultAdaptationThreshold)
	}
}

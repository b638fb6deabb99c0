package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/adaptui/internal/errors"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.SettleDelay = 0
	cfg.Period = time.Millisecond
	cfg.FrameInterval = time.Millisecond
	return cfg
}

func newGroupTrigger(t *testing.T, id string) (*Trigger, *fakeCoordinator) {
	t.Helper()
	coord := newFakeCoordinator(id, false)
	coord.cost = 0.01
	tr, err := New(coord, fastConfig())
	if err != nil {
		t.Fatalf("New(%s) error = %v", id, err)
	}
	return tr, coord
}

func TestGroup_AddAndGet(t *testing.T) {
	g := NewGroup(nil)
	a, _ := newGroupTrigger(t, "a")
	b, _ := newGroupTrigger(t, "b")

	if err := g.Add(a); err != nil {
		t.Fatalf("Add(a) error = %v", err)
	}
	if err := g.Add(b); err != nil {
		t.Fatalf("Add(b) error = %v", err)
	}
	if err := g.Add(a); !errors.Is(err, errors.ErrTriggerExists) {
		t.Errorf("Add(a) again error = %v, want ErrTriggerExists", err)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}

	got, err := g.Get("b")
	if err != nil || got != b {
		t.Errorf("Get(b) = %v, %v", got, err)
	}
	_, err = g.Get("missing")
	if !errors.IsNotFound(err) || !errors.Is(err, errors.ErrTriggerNotFound) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}

	statuses := g.Statuses()
	if len(statuses) != 2 || statuses[0].ID != "a" || statuses[1].ID != "b" {
		t.Errorf("Statuses() = %+v", statuses)
	}
	g.Stop()
}

func TestGroup_SetActive(t *testing.T) {
	g := NewGroup(nil)
	defer g.Stop()
	a, coord := newGroupTrigger(t, "a")
	if err := g.Add(a); err != nil {
		t.Fatal(err)
	}

	if err := g.SetActive("a", false); err != nil {
		t.Fatalf("SetActive(a, false) error = %v", err)
	}
	if coord.ActiveAndEnabled() {
		t.Error("coordinator should be paused")
	}
	if s, _ := g.Status("a"); !s.Paused {
		t.Errorf("Status(a) = %+v, want paused", s)
	}
	if err := g.SetActive("a", true); err != nil || !coord.ActiveAndEnabled() {
		t.Errorf("SetActive(a, true) = %v, active = %v", err, coord.ActiveAndEnabled())
	}
	if err := g.SetActive("missing", false); !errors.IsNotFound(err) {
		t.Errorf("SetActive(missing) error = %v, want not found", err)
	}
}

func TestGroup_RunUntilDisabled(t *testing.T) {
	g := NewGroup(nil)
	a, coordA := newGroupTrigger(t, "a")
	b, coordB := newGroupTrigger(t, "b")
	_ = g.Add(a)
	_ = g.Add(b)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g.Start(ctx)

	waitFor(t, func() bool {
		ca, _, _ := coordA.counts()
		cb, _, _ := coordB.counts()
		return ca > 0 && cb > 0
	})

	if err := g.Disable("a"); err != nil {
		t.Fatalf("Disable(a) error = %v", err)
	}
	if err := g.Disable("b"); err != nil {
		t.Fatalf("Disable(b) error = %v", err)
	}
	if err := g.Disable("missing"); err == nil {
		t.Error("Disable(missing) should fail")
	}

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("group did not exit after disabling every trigger")
	}

	for _, s := range g.Statuses() {
		if s.Enabled {
			t.Errorf("trigger %s still enabled", s.ID)
		}
	}
	g.Stop()
}

func TestGroup_AddAfterStartRuns(t *testing.T) {
	g := NewGroup(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g.Start(ctx)

	a, coord := newGroupTrigger(t, "a")
	if err := g.Add(a); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	waitFor(t, func() bool {
		n, _, _ := coord.counts()
		return n > 0
	})

	if err := g.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
	if err := g.Remove("a"); !errors.IsNotFound(err) {
		t.Errorf("Remove() again error = %v, want not found", err)
	}

	// The coordinator is released, so a replacement trigger can claim it.
	replacement, err := New(coord, fastConfig())
	if err != nil {
		t.Fatalf("New() after Remove error = %v", err)
	}
	if err := g.Add(replacement); err != nil {
		t.Fatalf("Add(replacement) error = %v", err)
	}
	g.Stop()
	if g.Len() != 0 {
		t.Errorf("Len() after Stop = %d, want 0", g.Len())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

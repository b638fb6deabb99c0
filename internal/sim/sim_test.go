package sim

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/adaptui/internal/layout"
)

func twoElementScene(t *testing.T) *Scene {
	t.Helper()
	s, err := NewScene([]string{"a", "b"}, []layout.Vec3{{X: 0}, {X: 10}}, 1)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	return s
}

func TestNewScene(t *testing.T) {
	if _, err := NewScene([]string{"a"}, nil, 1); err == nil {
		t.Error("NewScene() should reject mismatched lengths")
	}
	if _, err := NewScene([]string{"a", "a"}, []layout.Vec3{{}, {}}, 1); err == nil {
		t.Error("NewScene() should reject duplicate ids")
	}

	s := twoElementScene(t)
	s.SetTarget("a", layout.Vec3{Y: 2})
	s.SetTarget("unknown", layout.Vec3{Y: 2})
	if diff := cmp.Diff([]layout.Vec3{{Y: 2}, {X: 10}}, s.Targets()); diff != "" {
		t.Errorf("Targets() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Target("unknown"); ok {
		t.Error("Target(unknown) should not exist")
	}
}

func TestGenerate(t *testing.T) {
	s, req := Generate(4, 5, 42)

	if err := req.Validate(); err != nil {
		t.Fatalf("generated request invalid: %v", err)
	}
	if diff := cmp.Diff(s.IDs(), layout.IDs(req.InitialLayout)); diff != "" {
		t.Errorf("ids mismatch (-scene +request):\n%s", diff)
	}
	for _, v := range s.Targets() {
		if v.X < -5 || v.X > 5 || v.Y < -5 || v.Y > 5 || v.Z != 0 {
			t.Errorf("target %v outside extent", v)
		}
	}

	s2, _ := Generate(4, 5, 42)
	if diff := cmp.Diff(s.Targets(), s2.Targets()); diff != "" {
		t.Errorf("same seed produced different scenes:\n%s", diff)
	}
}

func TestFromRequest(t *testing.T) {
	req := layout.NewRequest([]layout.Layout{
		layout.New("a", layout.Vec3{X: 100}),
		layout.New("b", layout.Vec3{X: -100}),
	}, 1)

	s, err := FromRequest(req, 1, 7)
	if err != nil {
		t.Fatalf("FromRequest() error = %v", err)
	}
	for i, v := range s.Targets() {
		if d := v.Sub(req.InitialLayout[i].Position).Len(); d > 1.5 {
			t.Errorf("target %d is %v from its initial position", i, d)
		}
	}
}

func TestEvaluator_Cost(t *testing.T) {
	s := twoElementScene(t)
	e := NewEvaluator(s, 0)

	tests := []struct {
		name    string
		layouts []layout.Layout
		want    float64
	}{
		{"empty", nil, 0},
		{"on target", []layout.Layout{layout.New("a", layout.Vec3{}), layout.New("b", layout.Vec3{X: 10})}, 0},
		{"one off by 3-4-5", []layout.Layout{layout.New("a", layout.Vec3{X: 3, Y: 4})}, 25},
		{"mean over elements", []layout.Layout{layout.New("a", layout.Vec3{X: 2}), layout.New("b", layout.Vec3{X: 10})}, 2},
		{"unknown element", []layout.Layout{layout.New("zzz", layout.Vec3{X: 50})}, 0},
		{"overlap penalty", []layout.Layout{layout.New("x", layout.Vec3{}), layout.New("y", layout.Vec3{})}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tt.layouts)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if d := got - tt.want; d > 1e-9 || d < -1e-9 {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, latency := range []time.Duration{0, time.Hour} {
		e := NewEvaluator(twoElementScene(t), latency)
		if _, err := e.Evaluate(ctx, nil); err == nil {
			t.Errorf("Evaluate() with latency %v should fail on canceled context", latency)
		}
	}
}

func TestRandomSearch_OptimizeImproves(t *testing.T) {
	scene, req := Generate(3, 4, 1)
	eval := NewEvaluator(scene, 0)

	initial, err := eval.Evaluate(context.Background(), req.InitialLayout)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	res, err := NewRandomSearch(eval, 99).Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if res.Cost >= initial {
		t.Errorf("Optimize() cost %v did not improve on %v", res.Cost, initial)
	}
	if diff := cmp.Diff(layout.IDs(req.InitialLayout), layout.IDs(res.Layouts)); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}

	again, err := NewRandomSearch(eval, 99).Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if diff := cmp.Diff(res, again); diff != "" {
		t.Errorf("same seed produced different results:\n%s", diff)
	}
}

func TestRandomSearch_OptimizeRejectsInvalidRequest(t *testing.T) {
	scene, _ := Generate(1, 1, 1)
	if _, err := NewRandomSearch(NewEvaluator(scene, 0), 1).Optimize(context.Background(), layout.Request{}); err == nil {
		t.Error("Optimize() should reject an empty request")
	}
}

func TestRandomSearch_SessionConverges(t *testing.T) {
	scene, req := Generate(3, 4, 1)
	eval := NewEvaluator(scene, 0)
	initial, _ := eval.Evaluate(context.Background(), req.InitialLayout)

	search := NewRandomSearch(eval, 5, WithIterations(100), WithBatch(10), WithStepSize(0.3))
	s := search.Begin(context.Background(), req)

	var last layout.Step
	for i := 1; i <= 10; i++ {
		last = s.Step(context.Background())
		if last.PreviousCost != initial {
			t.Fatalf("step %d PreviousCost = %v, want %v", i, last.PreviousCost, initial)
		}
		if last.Converged != (i == 10) {
			t.Fatalf("step %d Converged = %v", i, last.Converged)
		}
		if last.HasCandidate() && last.Cost >= initial {
			t.Fatalf("step %d candidate cost %v not below %v", i, last.Cost, initial)
		}
	}
	if !last.HasCandidate() {
		t.Error("session should have found an improvement within its budget")
	}

	after := s.Step(context.Background())
	if !after.Converged {
		t.Error("step after convergence should stay converged")
	}
}

func TestRandomSearch_StepStopsWhenCanceled(t *testing.T) {
	scene, req := Generate(3, 4, 1)
	search := NewRandomSearch(NewEvaluator(scene, 0), 5, WithIterations(100), WithBatch(10))
	s := search.Begin(context.Background(), req)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	step := s.Step(ctx)
	if step.Converged || step.HasCandidate() {
		t.Fatalf("canceled step = %+v, want no progress", step)
	}

	// The session resumes with its full budget.
	var last layout.Step
	for i := 0; i < 10; i++ {
		last = s.Step(context.Background())
	}
	if !last.Converged {
		t.Error("session should converge after its full budget")
	}
}

func TestRandomSearch_StepBoundedByDeadline(t *testing.T) {
	scene, req := Generate(2, 4, 1)
	eval := NewEvaluator(scene, 20*time.Millisecond)
	search := NewRandomSearch(eval, 5, WithIterations(100), WithBatch(50))
	s := search.Begin(context.Background(), req)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	step := s.Step(ctx)
	// A full batch would take a second.
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Step() took %v past its deadline", elapsed)
	}
	if step.Converged {
		t.Error("an interrupted step should not converge the session")
	}
}

func TestDrift(t *testing.T) {
	scene := twoElementScene(t)
	before := scene.Targets()

	d := NewDrift(scene, 1, 3)
	d.Step()
	after := scene.Targets()
	if cmp.Equal(before, after) {
		t.Error("Step() should move targets")
	}
	for i := range after {
		delta := after[i].Sub(before[i])
		if delta.X < -1 || delta.X > 1 || delta.Y < -1 || delta.Y > 1 {
			t.Errorf("target %d moved %v, beyond amplitude", i, delta)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	// Disabled drift returns at once.
	NewDrift(scene, 0, 1).Run(context.Background(), time.Millisecond)
}

func TestPrintApplier(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrintApplier(&buf, 0, nil)

	if err := p.Apply(context.Background(), "menu", layout.New("menu", layout.Vec3{X: 1, Y: 2})); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "apply menu -> (1.00, 2.00, 0.00)") {
		t.Errorf("output = %q", got)
	}
	if p.Applied() != 1 {
		t.Errorf("Applied() = %d, want 1", p.Applied())
	}

	slow := NewPrintApplier(nil, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := slow.Apply(ctx, "menu", layout.Layout{}); err == nil {
		t.Error("Apply() should fail when canceled during animation")
	}
	if slow.Applied() != 0 {
		t.Errorf("Applied() = %d, want 0", slow.Applied())
	}
}

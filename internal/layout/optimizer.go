package layout

import "context"

// Evaluator scores a set of layouts. Lower cost is better.
type Evaluator interface {
	Evaluate(ctx context.Context, layouts []Layout) (float64, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, layouts []Layout) (float64, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, layouts []Layout) (float64, error) {
	return f(ctx, layouts)
}

// Result is the outcome of a full optimization run.
type Result struct {
	// Layouts are the candidate layouts, one per element of the request,
	// in request order.
	Layouts []Layout
	// Cost is the cost of Layouts.
	Cost float64
}

// Optimizer runs a blocking full search.
type Optimizer interface {
	Optimize(ctx context.Context, req Request) (Result, error)
}

// Step is the outcome of advancing an incremental session once.
type Step struct {
	// Layouts is empty until the session has produced a candidate.
	Layouts []Layout
	// Cost is the cost of Layouts.
	Cost float64
	// PreviousCost is the cost of the request's initial layout as seen by
	// the optimizer when the session began.
	PreviousCost float64
	// Converged reports that the session will not improve further.
	Converged bool
}

// HasCandidate reports whether the step carries layouts.
func (s Step) HasCandidate() bool {
	return len(s.Layouts) > 0
}

// Session is an incremental optimization in progress. Each call to Step
// must do a bounded amount of work so it can run once per frame, and must
// return early with the progress so far once ctx is done.
type Session interface {
	Step(ctx context.Context) Step
}

// IncrementalOptimizer opens sessions that spread a search across frames.
type IncrementalOptimizer interface {
	Begin(ctx context.Context, req Request) Session
}

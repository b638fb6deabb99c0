package sim

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/Iron-Ham/adaptui/internal/layout"
)

const (
	defaultIterations = 400
	defaultBatch      = 20
	defaultStepSize   = 0.5
)

// RandomSearch is a seeded hill climber. Each iteration nudges one element
// and keeps the move if the cost drops. It runs a fixed iteration budget,
// either all at once through Optimize or a batch per Step of a session.
type RandomSearch struct {
	evaluator  layout.Evaluator
	iterations int
	batch      int
	stepSize   float64

	mu  sync.Mutex
	rng *rand.Rand
}

// SearchOption configures a RandomSearch.
type SearchOption func(*RandomSearch)

// WithIterations sets the iteration budget per search.
func WithIterations(n int) SearchOption {
	return func(r *RandomSearch) {
		if n > 0 {
			r.iterations = n
		}
	}
}

// WithBatch sets how many iterations one incremental step runs.
func WithBatch(n int) SearchOption {
	return func(r *RandomSearch) {
		if n > 0 {
			r.batch = n
		}
	}
}

// WithStepSize sets the standard deviation of each move.
func WithStepSize(s float64) SearchOption {
	return func(r *RandomSearch) {
		if s > 0 {
			r.stepSize = s
		}
	}
}

// NewRandomSearch creates a search over evaluator seeded with seed.
func NewRandomSearch(evaluator layout.Evaluator, seed uint64, opts ...SearchOption) *RandomSearch {
	r := &RandomSearch{
		evaluator:  evaluator,
		iterations: defaultIterations,
		batch:      defaultBatch,
		stepSize:   defaultStepSize,
		rng:        rand.New(rand.NewPCG(seed, seed+1)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ layout.Optimizer            = (*RandomSearch)(nil)
	_ layout.IncrementalOptimizer = (*RandomSearch)(nil)
)

// Optimize runs the full budget and returns the best layouts found. The
// result always holds a candidate, which may equal the initial layouts.
func (r *RandomSearch) Optimize(ctx context.Context, req layout.Request) (layout.Result, error) {
	if err := req.Validate(); err != nil {
		return layout.Result{}, err
	}
	s, err := r.begin(ctx, req)
	if err != nil {
		return layout.Result{}, err
	}
	for !s.done() {
		if err := s.advance(ctx, r.iterations); err != nil {
			return layout.Result{}, err
		}
	}
	return layout.Result{Layouts: layout.Clone(s.best), Cost: s.bestCost}, nil
}

// Begin opens an incremental session seeded from req. A session whose
// seed evaluation fails reports itself converged.
func (r *RandomSearch) Begin(ctx context.Context, req layout.Request) layout.Session {
	s, err := r.begin(ctx, req)
	if err != nil {
		return &session{failed: true}
	}
	return s
}

func (r *RandomSearch) begin(ctx context.Context, req layout.Request) (*session, error) {
	initial := layout.Clone(req.InitialLayout)
	cost, err := r.evaluator.Evaluate(ctx, initial)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	seed := r.rng.Uint64()
	r.mu.Unlock()

	return &session{
		search:      r,
		rng:         rand.New(rand.NewPCG(seed, seed+1)),
		best:        initial,
		bestCost:    cost,
		initialCost: cost,
	}, nil
}

// session is one incremental search. It is not safe for concurrent use.
type session struct {
	search      *RandomSearch
	rng         *rand.Rand
	best        []layout.Layout
	bestCost    float64
	initialCost float64
	improved    bool
	iteration   int
	failed      bool
}

func (s *session) done() bool {
	return s.failed || s.iteration >= s.search.iterations
}

func (s *session) advance(ctx context.Context, n int) error {
	if len(s.best) == 0 {
		s.iteration = s.search.iterations
		return nil
	}
	for i := 0; i < n && !s.done(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.iteration++

		candidate := layout.Clone(s.best)
		k := s.rng.IntN(len(candidate))
		move := layout.Vec3{
			X: s.rng.NormFloat64() * s.search.stepSize,
			Y: s.rng.NormFloat64() * s.search.stepSize,
		}
		candidate[k] = candidate[k].WithPosition(candidate[k].Position.Add(move))

		cost, err := s.search.evaluator.Evaluate(ctx, candidate)
		if err != nil {
			return err
		}
		if cost < s.bestCost {
			s.best = candidate
			s.bestCost = cost
			s.improved = true
		}
	}
	return nil
}

// Step runs one batch. Layouts are empty until the search has found an
// improvement over the initial layouts. PreviousCost is the cost of the
// initial layouts. When ctx ends mid-batch the step reports the progress
// so far and the session can be resumed.
func (s *session) Step(ctx context.Context) layout.Step {
	if s.failed {
		return layout.Step{Converged: true}
	}
	if err := s.advance(ctx, s.search.batch); err != nil && ctx.Err() == nil {
		s.failed = true
		return layout.Step{Converged: true}
	}

	step := layout.Step{
		Cost:         s.bestCost,
		PreviousCost: s.initialCost,
		Converged:    s.done(),
	}
	if s.improved {
		step.Layouts = layout.Clone(s.best)
	}
	return step
}

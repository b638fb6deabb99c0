package sim

import (
	"context"
	"time"

	"github.com/Iron-Ham/adaptui/internal/layout"
)

// Evaluator scores layouts against a scene: the mean squared distance of
// each element from its target plus a penalty for every pair of elements
// closer than the scene spacing. Elements the scene does not know add no
// distance term.
type Evaluator struct {
	scene   *Scene
	latency time.Duration
}

// NewEvaluator creates an evaluator for scene. A positive latency makes
// every evaluation take that long, which gives asynchronous polling
// something to wait for.
func NewEvaluator(scene *Scene, latency time.Duration) *Evaluator {
	return &Evaluator{scene: scene, latency: latency}
}

// Evaluate implements layout.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, layouts []layout.Layout) (float64, error) {
	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return 0, err
	}
	return e.cost(layouts), nil
}

func (e *Evaluator) cost(layouts []layout.Layout) float64 {
	if len(layouts) == 0 {
		return 0
	}

	var distance float64
	for _, l := range layouts {
		target, ok := e.scene.Target(l.ElementID)
		if !ok {
			continue
		}
		d := l.Position.Sub(target).Len()
		distance += d * d
	}
	distance /= float64(len(layouts))

	var overlap float64
	spacing := e.scene.Spacing()
	for i := range layouts {
		for j := i + 1; j < len(layouts); j++ {
			d := layouts[i].Position.Sub(layouts[j].Position).Len()
			if d < spacing {
				gap := spacing - d
				overlap += gap * gap
			}
		}
	}
	return distance + overlap
}

package sim

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Drift moves scene targets on a random walk, standing in for a user
// moving through the space.
type Drift struct {
	scene     *Scene
	amplitude float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrift creates a drift moving each target by up to amplitude per step.
func NewDrift(scene *Scene, amplitude float64, seed uint64) *Drift {
	return &Drift{
		scene:     scene,
		amplitude: amplitude,
		rng:       rand.New(rand.NewPCG(seed, seed+7)),
	}
}

// Step moves every target once.
func (d *Drift) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.scene.IDs() {
		target, _ := d.scene.Target(id)
		d.scene.SetTarget(id, target.Add(randomPoint(d.rng, d.amplitude)))
	}
}

// Run steps the drift every interval until ctx is done. A non-positive
// interval or amplitude returns immediately.
func (d *Drift) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || d.amplitude <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Step()
		}
	}
}

package sim

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Iron-Ham/adaptui/internal/layout"
)

// DefaultSpacing is the minimum distance elements keep from each other
// before an overlap penalty applies.
const DefaultSpacing = 0.5

// Scene holds the position each element would ideally occupy. Targets may
// move while a run is in progress.
type Scene struct {
	mu      sync.RWMutex
	ids     []string
	targets map[string]layout.Vec3
	spacing float64
}

// NewScene creates a scene from ordered element IDs and their targets.
func NewScene(ids []string, targets []layout.Vec3, spacing float64) (*Scene, error) {
	if len(ids) != len(targets) {
		return nil, fmt.Errorf("scene: %d ids for %d targets", len(ids), len(targets))
	}
	s := &Scene{
		ids:     append([]string(nil), ids...),
		targets: make(map[string]layout.Vec3, len(ids)),
		spacing: spacing,
	}
	for i, id := range ids {
		if _, dup := s.targets[id]; dup {
			return nil, fmt.Errorf("scene: duplicate element %q", id)
		}
		s.targets[id] = targets[i]
	}
	return s, nil
}

// Generate builds a random scene of n elements within [-extent, extent]
// on X and Y, and a request placing every element at the origin.
func Generate(n int, extent float64, seed uint64) (*Scene, layout.Request) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ids := make([]string, n)
	targets := make([]layout.Vec3, n)
	initial := make([]layout.Layout, n)
	for i := range n {
		ids[i] = fmt.Sprintf("element-%d", i)
		targets[i] = randomPoint(rng, extent)
		initial[i] = layout.New(ids[i], layout.Vec3{})
	}
	s, _ := NewScene(ids, targets, DefaultSpacing)
	return s, layout.NewRequest(initial, 1)
}

// FromRequest builds a scene whose targets are the request's initial
// positions displaced by up to offset on X and Y.
func FromRequest(req layout.Request, offset float64, seed uint64) (*Scene, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ids := make([]string, len(req.InitialLayout))
	targets := make([]layout.Vec3, len(req.InitialLayout))
	for i, l := range req.InitialLayout {
		ids[i] = l.ElementID
		targets[i] = l.Position.Add(randomPoint(rng, offset))
	}
	return NewScene(ids, targets, DefaultSpacing)
}

func randomPoint(rng *rand.Rand, extent float64) layout.Vec3 {
	return layout.Vec3{
		X: (rng.Float64()*2 - 1) * extent,
		Y: (rng.Float64()*2 - 1) * extent,
	}
}

// IDs returns the element IDs in scene order.
func (s *Scene) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Spacing returns the overlap distance.
func (s *Scene) Spacing() float64 { return s.spacing }

// Target returns the target position of id.
func (s *Scene) Target(id string) (layout.Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.targets[id]
	return v, ok
}

// SetTarget moves the target of id. Unknown IDs are ignored.
func (s *Scene) SetTarget(id string, v layout.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[id]; ok {
		s.targets[id] = v
	}
}

// Targets returns a copy of every target in scene order.
func (s *Scene) Targets() []layout.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]layout.Vec3, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.targets[id]
	}
	return out
}

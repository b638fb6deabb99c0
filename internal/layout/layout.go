package layout

import (
	"fmt"
	"math"
)

// Vec3 is a point or extent in UI space.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Len returns the euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// String formats the vector with two decimals per component.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Quaternion is an orientation in UI space.
type Quaternion struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
	W float64 `yaml:"w" json:"w"`
}

// Identity is the quaternion with no rotation.
var Identity = Quaternion{W: 1}

// Layout is the spatial configuration of one UI element.
type Layout struct {
	ElementID string     `yaml:"element_id" json:"element_id"`
	Position  Vec3       `yaml:"position" json:"position"`
	Rotation  Quaternion `yaml:"rotation" json:"rotation"`
	Scale     Vec3       `yaml:"scale" json:"scale"`
}

// New returns a layout for elementID at position with identity rotation
// and unit scale.
func New(elementID string, position Vec3) Layout {
	return Layout{
		ElementID: elementID,
		Position:  position,
		Rotation:  Identity,
		Scale:     Vec3{X: 1, Y: 1, Z: 1},
	}
}

// WithPosition returns a copy of l moved to p.
func (l Layout) WithPosition(p Vec3) Layout {
	l.Position = p
	return l
}

// String returns a compact description for logs.
func (l Layout) String() string {
	return fmt.Sprintf("%s@%s", l.ElementID, l.Position)
}

// Clone returns a copy of layouts that does not share backing storage.
func Clone(layouts []Layout) []Layout {
	if layouts == nil {
		return nil
	}
	out := make([]Layout, len(layouts))
	copy(out, layouts)
	return out
}

// IDs returns the element IDs of layouts in order.
func IDs(layouts []Layout) []string {
	ids := make([]string, len(layouts))
	for i, l := range layouts {
		ids[i] = l.ElementID
	}
	return ids
}

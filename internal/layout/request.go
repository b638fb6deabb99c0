package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Request describes one optimization problem: the layout the solver starts
// from and how many objectives it balances.
type Request struct {
	InitialLayout []Layout `yaml:"initial_layout" json:"initial_layout"`
	Objectives    int      `yaml:"objectives" json:"objectives"`
}

// NewRequest builds a request starting from a copy of initial.
func NewRequest(initial []Layout, objectives int) Request {
	return Request{
		InitialLayout: Clone(initial),
		Objectives:    objectives,
	}
}

// Validate checks that the request can be handed to an optimizer.
func (r Request) Validate() error {
	if len(r.InitialLayout) == 0 {
		return fmt.Errorf("request has no initial layout")
	}
	if r.Objectives < 1 {
		return fmt.Errorf("request needs at least one objective, got %d", r.Objectives)
	}
	seen := make(map[string]bool, len(r.InitialLayout))
	for i, l := range r.InitialLayout {
		if l.ElementID == "" {
			return fmt.Errorf("initial_layout[%d] has no element_id", i)
		}
		if seen[l.ElementID] {
			return fmt.Errorf("duplicate element_id %q in initial_layout", l.ElementID)
		}
		seen[l.ElementID] = true
	}
	return nil
}

// ParseRequest decodes a YAML request document.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("failed to parse request: %w", err)
	}
	for i := range req.InitialLayout {
		if req.InitialLayout[i].Rotation == (Quaternion{}) {
			req.InitialLayout[i].Rotation = Identity
		}
		if req.InitialLayout[i].Scale == (Vec3{}) {
			req.InitialLayout[i].Scale = Vec3{X: 1, Y: 1, Z: 1}
		}
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// LoadRequest reads and decodes a YAML request file.
func LoadRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return ParseRequest(data)
}

// Marshal encodes the request as YAML.
func (r Request) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

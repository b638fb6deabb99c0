package adaptation

import (
	"sync"

	"github.com/Iron-Ham/adaptui/internal/layout"
)

// Element is a managed UI element in a global-scope Manager.
type Element struct {
	id  string
	mgr *Manager

	mu     sync.RWMutex
	layout layout.Layout
}

// ID returns the element ID.
func (e *Element) ID() string { return e.id }

// Layout returns the element's current layout.
func (e *Element) Layout() layout.Layout {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout
}

// SetLayout replaces the element's layout. The element ID is preserved.
func (e *Element) SetLayout(l layout.Layout) {
	l.ElementID = e.id
	e.mu.Lock()
	e.layout = l
	e.mu.Unlock()
	e.mgr.layoutChanged()
}

// Adapt applies l to the visible element through the manager's Applier.
func (e *Element) Adapt(l layout.Layout) {
	l.ElementID = e.id
	e.mgr.apply(e.id, l)
}

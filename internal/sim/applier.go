package sim

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Iron-Ham/adaptui/internal/layout"
	"github.com/Iron-Ham/adaptui/internal/logging"
)

// PrintApplier renders applied layouts as text lines. A positive animate
// duration makes each apply take that long, as a UI transition would.
type PrintApplier struct {
	mu      sync.Mutex
	w       io.Writer
	animate time.Duration
	logger  *logging.Logger
	applied int
}

// NewPrintApplier creates an applier writing to w. A nil w discards
// output.
func NewPrintApplier(w io.Writer, animate time.Duration, logger *logging.Logger) *PrintApplier {
	if w == nil {
		w = io.Discard
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &PrintApplier{w: w, animate: animate, logger: logger.WithComponent("applier")}
}

// Apply waits out the animation and prints the layout.
func (p *PrintApplier) Apply(ctx context.Context, elementID string, l layout.Layout) error {
	if p.animate > 0 {
		timer := time.NewTimer(p.animate)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied++
	if _, err := fmt.Fprintf(p.w, "apply %s -> %s\n", elementID, l.Position); err != nil {
		return err
	}
	p.logger.Debug("layout rendered", "element_id", elementID, "position", l.Position.String())
	return nil
}

// Applied returns how many layouts have been applied.
func (p *PrintApplier) Applied() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

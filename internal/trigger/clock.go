package trigger

import (
	"context"
	"time"
)

// Clock provides the suspension points a trigger yields at.
type Clock interface {
	Now() time.Time
	// Sleep waits approximately d, returning early with ctx.Err() if ctx
	// is canceled.
	Sleep(ctx context.Context, d time.Duration) error
	// NextFrame waits for the next frame slot.
	NextFrame(ctx context.Context) error
}

type realClock struct {
	frame time.Duration
}

// NewClock returns a wall clock whose frames are frameInterval apart.
// A non-positive interval uses DefaultFrameInterval.
func NewClock(frameInterval time.Duration) Clock {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return realClock{frame: frameInterval}
}

func (c realClock) Now() time.Time { return time.Now() }

func (c realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c realClock) NextFrame(ctx context.Context) error {
	return c.Sleep(ctx, c.frame)
}

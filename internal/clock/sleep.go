// Package clock provides context-aware time helpers.
package clock

import (
	"context"
	"time"
)

// Sleep blocks for d, returning early with the context error when ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

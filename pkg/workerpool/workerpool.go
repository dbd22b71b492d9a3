// Package workerpool provides bounded concurrent processing of work items.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Process runs process over items with at most workerCount goroutines in
// flight. The first failure cancels the remaining work and is the error
// returned; onCancel, when non-nil, runs on the failing worker before the
// cancellation propagates. A canceled ctx surfaces as its context error.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) error,
	onCancel func(),
) error {
	if workerCount < 1 {
		workerCount = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := process(gctx, item); err != nil {
				if onCancel != nil {
					onCancel()
				}
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Wait cancels the group context on return, so report the caller's.
	return ctx.Err()
}

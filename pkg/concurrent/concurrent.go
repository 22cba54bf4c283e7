package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies mapFn to every element with at most workers goroutines,
// preserving order. It returns the first error and cancels the context handed
// to the remaining calls. workers <= 0 means one goroutine per element.
func ParallelMap[T any, R any](ctx context.Context, in []T, workers int, mapFn func(context.Context, int, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	group, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}

	for idx, val := range in {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := mapFn(gctx, idx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

package data

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxConcurrent bounds parallel requests issued by FanOut.
const maxConcurrent = 4

// FanOut runs fn for every key concurrently and returns the results in key
// order. The first error cancels the remaining calls and is returned.
func FanOut[K any, T any](ctx context.Context, keys []K, fn func(ctx context.Context, key K) (T, error)) ([]T, error) {
	results := make([]T, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, k := range keys {
		g.Go(func() error {
			v, err := fn(ctx, k)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

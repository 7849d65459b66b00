package parallel

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
)

type outcome[D any] struct {
	d D
	e error
}

// Map runs f over every item with at most limit concurrent calls and yields
// the outcomes in completion order, not input order. Map is context aware, a
// canceled ctx as well as an early break stop the remaining work.
//
//	for finding, err := range parallel.Map(ctx, 8, sites, probeOne) {}
func Map[E, D any](ctx context.Context, limit int, items []E, f func(context.Context, E) (D, error)) iter.Seq2[D, error] {
	return func(yield func(D, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		// buffered for every item so no sender ever blocks after an early break
		results := make(chan outcome[D], len(items))

		go func() {
			for _, item := range items {
				g.Go(func() error {
					d, err := f(gctx, item)
					select {
					case <-gctx.Done():
						return gctx.Err()
					case results <- outcome[D]{d: d, e: err}:
					}
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-results:
				if !ok {
					return
				}
				if !yield(r.d, r.e) {
					return
				}
			}
		}
	}
}

package fetchdedupe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Prefetch warms the cache by fetching every URL with GET under the
// client's default read policy. Duplicate URLs coalesce like any other
// call. The first failure cancels the remaining fetches and is returned.
func (c *Client) Prefetch(ctx context.Context, urls ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.prefetchMax)

	for _, u := range urls {
		u := u
		g.Go(func() error {
			_, err := c.Fetch(ctx, u, nil)
			return err
		})
	}

	return g.Wait()
}

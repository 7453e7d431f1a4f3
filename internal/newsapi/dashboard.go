package newsapi

import (
	"context"

	"news-gateway/internal/news"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the highlights view: the filtered feed plus breaking news.
// Each half carries its own error so one failing never hides the other.
type Dashboard struct {
	Highlights    []news.Highlight
	HighlightsErr error
	Breaking      []news.Highlight
	BreakingErr   error
}

// Dashboard fetches both halves concurrently and waits for both.
func (c *Client) Dashboard(ctx context.Context, category string, limit int) Dashboard {
	var (
		d Dashboard
		g errgroup.Group
	)

	g.Go(func() error {
		d.Highlights, d.HighlightsErr = c.Highlights(ctx, category, limit)
		return nil
	})
	g.Go(func() error {
		d.Breaking, d.BreakingErr = c.Breaking(ctx)
		return nil
	})
	_ = g.Wait()

	return d
}

package scrape

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	scrapers []Scraper
}

// NewChain creates a Chain. Scrapers are tried in the order given.
func NewChain(scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers}
}

func (c *Chain) Name() string { return "chain" }

// Scrape returns the first successful page, or the last error when every
// scraper fails.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr error
	for _, s := range c.scrapers {
		page, err := s.Scrape(ctx, targetURL)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, eris.Wrapf(lastErr, "scrape: all scrapers failed for %s", targetURL)
	}
	return nil, eris.Errorf("scrape: no scraper produced a page for %s", targetURL)
}

// ScrapeAll fetches urls with at most maxConcurrent requests in flight.
// Failed URLs are skipped; pages keep the input order.
func ScrapeAll(ctx context.Context, s Scraper, urls []string, maxConcurrent int) []*Page {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	results := make([]*Page, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			page, err := s.Scrape(gCtx, u)
			if err != nil {
				zap.L().Debug("scrape: skipping url", zap.String("url", u), zap.Error(err))
				return nil
			}
			results[i] = page
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]*Page, 0, len(results))
	for _, p := range results {
		if p != nil {
			pages = append(pages, p)
		}
	}
	return pages
}

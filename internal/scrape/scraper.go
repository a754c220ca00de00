// Package scrape fetches web pages as plain text for the research and
// analysis agents, falling back across scrapers when a site blocks one.
package scrape

import (
	"context"
)

// Page is a fetched page reduced to readable text.
type Page struct {
	URL        string
	Title      string
	Text       string
	Emails     []string
	StatusCode int
	Source     string // "local_http" or "jina"
}

// Scraper fetches a single URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
}

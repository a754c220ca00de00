// Package agent defines the generative collaborators of a lead run: the
// researcher that finds sources and lists companies, and the per-category
// analysts and reviewers.
package agent

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/llm"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scrape"
)

// Analyst produces free-text analysis (contact email + pain points) for one
// company.
type Analyst interface {
	Analyze(ctx context.Context, name, website string) (string, error)
}

// Reviewer critiques and refines an earlier analysis.
type Reviewer interface {
	Review(ctx context.Context, name, website, painPoints string) (string, error)
}

// Researcher supplies the raw text the pipeline parses: a list of source
// URLs, and for each source a list of companies.
type Researcher interface {
	FindSources(ctx context.Context) (string, error)
	ExtractCompanies(ctx context.Context, sourceURL string) (string, error)
}

// Handlers are the collaborators bound to one category. Reviewer may be nil.
type Handlers struct {
	Analyst  Analyst
	Reviewer Reviewer
}

// Roster maps each category to its collaborators. It is built once at
// startup and only read afterwards, so it is safe to share across workflows.
type Roster map[model.Category]Handlers

// Lookup returns the handlers bound to cat.
func (r Roster) Lookup(cat model.Category) (Handlers, bool) {
	h, ok := r[cat]
	return h, ok
}

// NewRoster binds an analyst, and a reviewer when the category enables
// review, to every configured category.
func NewRoster(cfg *config.Config, gen llm.Generator, scraper scrape.Scraper) Roster {
	roster := make(Roster, len(cfg.Leadgen.Categories))
	for _, cat := range cfg.Leadgen.Categories {
		h := Handlers{Analyst: NewAnalyst(gen, scraper, cat)}
		if cat.Review {
			h.Reviewer = NewReviewer(gen, cat)
		}
		roster[model.Category(cat.Name)] = h
	}
	return roster
}

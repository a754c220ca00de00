package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/llm"
	"github.com/sells-group/leadgen-cli/internal/prompts"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/jina"
)

// searchResultsPerQuery bounds the grounding results kept for each query.
const searchResultsPerQuery = 5

// LLMResearcher finds source pages and lists their companies with a
// generator. Web search grounding is used when a search client is set.
type LLMResearcher struct {
	gen        llm.Generator
	scraper    scrape.Scraper
	search     jina.Client
	categories []config.CategoryConfig
	maxURLs    int
}

// NewResearcher creates an LLMResearcher. search may be nil.
func NewResearcher(cfg *config.Config, gen llm.Generator, scraper scrape.Scraper, search jina.Client) *LLMResearcher {
	return &LLMResearcher{
		gen:        gen,
		scraper:    scraper,
		search:     search,
		categories: cfg.Leadgen.Categories,
		maxURLs:    cfg.Leadgen.MaxURLs,
	}
}

// FindSources returns generator text listing source URLs.
func (r *LLMResearcher) FindSources(ctx context.Context) (string, error) {
	var cats, queries []string
	for _, c := range r.categories {
		cats = append(cats, "- "+c.Name+": "+c.Label)
		queries = append(queries, c.SearchQueries...)
	}

	maxURLs := r.maxURLs
	if maxURLs <= 0 {
		maxURLs = 10
	}
	prompt := prompts.Format(prompts.MustGet(prompts.LeadgenFile, "search_sources"), map[string]string{
		"Categories":    strings.Join(cats, "\n"),
		"Queries":       dashList(queries),
		"SearchResults": r.searchResults(ctx, queries),
		"MaxURLs":       strconv.Itoa(maxURLs),
	})

	return r.gen.Generate(ctx, llm.Request{
		System: prompts.MustGet(prompts.LeadgenFile, "researcher_system"),
		Prompt: prompt,
	})
}

// searchResults runs every query through web search and renders the hits
// as a bullet list. Search failures only shrink the list.
func (r *LLMResearcher) searchResults(ctx context.Context, queries []string) string {
	if r.search == nil {
		return "(no search results available)"
	}

	var lines []string
	seen := make(map[string]bool)
	for _, q := range queries {
		resp, err := r.search.Search(ctx, q)
		if err != nil {
			zap.L().Warn("agent: source search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		for i, res := range resp.Data {
			if i >= searchResultsPerQuery {
				break
			}
			if res.URL == "" || seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			lines = append(lines, fmt.Sprintf("- %s (%s)", res.URL, res.Title))
		}
	}
	if len(lines) == 0 {
		return "(no search results available)"
	}
	return strings.Join(lines, "\n")
}

// ExtractCompanies scrapes sourceURL and returns generator text listing
// the companies on it.
func (r *LLMResearcher) ExtractCompanies(ctx context.Context, sourceURL string) (string, error) {
	page, err := r.scraper.Scrape(ctx, sourceURL)
	if err != nil {
		return "", eris.Wrapf(err, "agent: scrape source %s", sourceURL)
	}
	if strings.TrimSpace(page.Text) == "" {
		return "", eris.Errorf("agent: source %s has no text", sourceURL)
	}

	prompt := prompts.Format(prompts.MustGet(prompts.LeadgenFile, "extract_companies"), map[string]string{
		"URL":     sourceURL,
		"Content": page.Text,
	})
	return r.gen.Generate(ctx, llm.Request{
		System: prompts.MustGet(prompts.LeadgenFile, "researcher_system"),
		Prompt: prompt,
	})
}

func dashList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		if it = strings.TrimSpace(it); it == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it)
	}
	return b.String()
}

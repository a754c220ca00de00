package agent

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/llm"
	"github.com/sells-group/leadgen-cli/internal/prompts"
	"github.com/sells-group/leadgen-cli/internal/scrape"
)

// contactPaths are fetched next to the homepage when looking for emails.
var contactPaths = []string{"/contact", "/about"}

// LLMAnalyst gathers a company's website text and emails, then asks the
// generator for a contact email and pain points framed by the category.
type LLMAnalyst struct {
	gen      llm.Generator
	scraper  scrape.Scraper
	category config.CategoryConfig
}

// NewAnalyst creates an analyst for one category.
func NewAnalyst(gen llm.Generator, scraper scrape.Scraper, category config.CategoryConfig) *LLMAnalyst {
	return &LLMAnalyst{gen: gen, scraper: scraper, category: category}
}

// Analyze returns free text with a labeled contact email and pain points.
// An unreachable website does not fail the analysis.
func (a *LLMAnalyst) Analyze(ctx context.Context, name, website string) (string, error) {
	pages := scrape.ScrapeAll(ctx, a.scraper, siteURLs(website), len(contactPaths)+1)

	siteText := "(website could not be fetched)"
	var texts, emails []string
	seen := make(map[string]bool)
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
		for _, e := range p.Emails {
			if !seen[e] {
				seen[e] = true
				emails = append(emails, e)
			}
		}
	}
	if len(texts) > 0 {
		siteText = strings.Join(texts, "\n\n")
	}
	foundEmails := "none found"
	if len(emails) > 0 {
		foundEmails = strings.Join(emails, ", ")
	}

	zap.L().Debug("agent: analysis context gathered",
		zap.String("company", name),
		zap.String("category", a.category.Name),
		zap.Int("pages", len(pages)),
		zap.Int("emails", len(emails)),
	)

	prompt := prompts.Format(prompts.MustGet(prompts.LeadgenFile, "analysis"), map[string]string{
		"Name":     name,
		"Website":  website,
		"SiteText": siteText,
		"Emails":   foundEmails,
		"Focus":    a.category.AnalysisFocus,
	})
	return a.gen.Generate(ctx, llm.Request{
		System: prompts.MustGet(prompts.LeadgenFile, "analyst_system"),
		Prompt: prompt,
	})
}

// siteURLs returns the homepage and contact pages for website. A website
// without a scheme is assumed to be https.
func siteURLs(website string) []string {
	website = strings.TrimSpace(website)
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return []string{website}
	}

	urls := []string{website}
	for _, p := range contactPaths {
		urls = append(urls, (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: p}).String())
	}
	return urls
}

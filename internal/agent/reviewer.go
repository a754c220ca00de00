package agent

import (
	"context"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/llm"
	"github.com/sells-group/leadgen-cli/internal/prompts"
)

// LLMReviewer critiques and refines earlier pain points for one category.
type LLMReviewer struct {
	gen      llm.Generator
	category config.CategoryConfig
}

// NewReviewer creates a reviewer for one category.
func NewReviewer(gen llm.Generator, category config.CategoryConfig) *LLMReviewer {
	return &LLMReviewer{gen: gen, category: category}
}

// Review returns free text holding the refined or validated pain points.
func (r *LLMReviewer) Review(ctx context.Context, name, website, painPoints string) (string, error) {
	lines := strings.Split(painPoints, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, "-*•· \t")
	}
	points := dashList(lines)
	if points == "" {
		points = "No initial pain points provided."
	}

	prompt := prompts.Format(prompts.MustGet(prompts.LeadgenFile, "review"), map[string]string{
		"Name":       name,
		"Website":    website,
		"PainPoints": points,
		"Focus":      r.category.ReviewFocus,
	})
	return r.gen.Generate(ctx, llm.Request{
		System: prompts.MustGet(prompts.LeadgenFile, "reviewer_system"),
		Prompt: prompt,
	})
}

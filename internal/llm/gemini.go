package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
)

// Gemini generates text with a Google Gemini model.
type Gemini struct {
	client gemini.Client
	model  string
	cfg    config.LLMConfig
}

// NewGemini creates a Gemini generator.
func NewGemini(client gemini.Client, model string, cfg config.LLMConfig) *Gemini {
	return &Gemini{client: client, model: model, cfg: cfg}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.GenerateText(ctx, gemini.TextRequest{
		Model:       g.model,
		System:      req.System,
		Prompt:      req.Prompt,
		Temperature: float32(g.cfg.Temperature),
		MaxTokens:   int32(maxTokens(req, g.cfg)),
	})
	if err != nil {
		return "", classify(err, gemini.StatusCode(err))
	}

	zap.L().Debug("llm: gemini usage",
		zap.Int32("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int32("candidates_tokens", resp.Usage.CandidatesTokens),
	)
	return resp.Text, nil
}

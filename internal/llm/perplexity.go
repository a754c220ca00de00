package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/pkg/perplexity"
)

// Perplexity generates text with the Perplexity chat completions API.
type Perplexity struct {
	client perplexity.Client
	model  string
	cfg    config.LLMConfig
}

// NewPerplexity creates a Perplexity generator.
func NewPerplexity(client perplexity.Client, model string, cfg config.LLMConfig) *Perplexity {
	return &Perplexity{client: client, model: model, cfg: cfg}
}

func (p *Perplexity) Name() string { return "perplexity" }

func (p *Perplexity) Generate(ctx context.Context, req Request) (string, error) {
	var msgs []perplexity.Message
	if req.System != "" {
		msgs = append(msgs, perplexity.Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, perplexity.Message{Role: "user", Content: req.Prompt})

	temp := p.cfg.Temperature
	tokens := maxTokens(req, p.cfg)
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: &temp,
		MaxTokens:   &tokens,
	})
	if err != nil {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			return "", classify(err, apiErr.StatusCode)
		}
		return "", err
	}

	zap.L().Debug("llm: perplexity usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("citations", len(resp.Citations)),
	)

	text := resp.Text()
	if text == "" {
		return "", eris.New("llm: perplexity returned no choices")
	}
	return text, nil
}

package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

// Anthropic generates text with the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	cfg    config.LLMConfig
}

// NewAnthropic creates an Anthropic generator.
func NewAnthropic(client anthropic.Client, model string, cfg config.LLMConfig) *Anthropic {
	return &Anthropic{client: client, model: model, cfg: cfg}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	temp := a.cfg.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(maxTokens(req, a.cfg)),
		System:      req.System,
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", classify(err, anthropic.StatusCode(err))
	}
	resp.Usage.LogCost(a.model, "generate")

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("llm: anthropic returned no text (stop reason %s)", resp.StopReason)
	}
	return text, nil
}

// Package llm puts the supported generative text providers behind one
// Generator interface used by every agent.
package llm

import (
	"context"
	"time"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
	"github.com/sells-group/leadgen-cli/pkg/perplexity"
)

// Request is a single-turn generation request.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the generator selected by cfg.LLM.Provider, guarded by a
// circuit breaker. Provider SDK retries are disabled; the caller's retry
// policy owns them.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	var gen Generator
	switch cfg.LLM.Provider {
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("llm: anthropic key is required")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key, anthropicopt.WithMaxRetries(0))
		gen = NewAnthropic(client, cfg.Anthropic.Model, cfg.LLM)
	case "perplexity":
		if cfg.Perplexity.Key == "" {
			return nil, eris.New("llm: perplexity key is required")
		}
		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		gen = NewPerplexity(client, cfg.Perplexity.Model, cfg.LLM)
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.Gemini.Key)
		if err != nil {
			return nil, eris.Wrap(err, "llm: gemini")
		}
		gen = NewGemini(client, cfg.Gemini.Model, cfg.LLM)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}

	return NewGuarded(gen, resilience.NewCircuitBreaker(
		gen.Name(),
		cfg.Circuit.FailureThreshold,
		time.Duration(cfg.Circuit.ResetTimeoutSecs)*time.Second,
	)), nil
}

// classify marks err transient when the provider answered with a
// throttling or server-side status.
func classify(err error, status int) error {
	if err == nil {
		return nil
	}
	if resilience.IsTransientHTTPStatus(status) {
		return resilience.NewTransientError(err, status)
	}
	return err
}

func maxTokens(req Request, cfg config.LLMConfig) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 2048
}

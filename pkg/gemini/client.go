// Package gemini wraps the Google Gemini generative API behind a small
// text-in, text-out interface.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

// Client generates text with a Gemini model.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error)
	Close() error
}

// TextRequest is a single-turn generation request.
type TextRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// TextResponse holds the generated text and token usage.
type TextResponse struct {
	Text  string
	Usage Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int32
	CandidatesTokens int32
}

type sdkClient struct {
	client *genai.Client
}

// NewClient creates a Gemini client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client}, nil
}

func (c *sdkClient) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	name := req.Model
	if name == "" {
		name = defaultModel
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}
	return fromResponse(resp)
}

func (c *sdkClient) Close() error {
	return c.client.Close()
}

func fromResponse(resp *genai.GenerateContentResponse) (*TextResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, eris.New("gemini: no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, eris.Errorf("gemini: no content in response (finish reason %s)", candidate.FinishReason)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return nil, eris.New("gemini: no text parts in response")
	}

	out := &TextResponse{Text: strings.Join(parts, "")}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CandidatesTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}
	return out, nil
}

// httpCoder is implemented by the gax API errors the SDK returns.
type httpCoder interface {
	HTTPCode() int
}

// StatusCode extracts the HTTP status from a Gemini error, or 0.
func StatusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var hc httpCoder
	if errors.As(err, &hc) {
		return hc.HTTPCode()
	}
	return 0
}

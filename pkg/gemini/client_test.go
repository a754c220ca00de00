package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// MockClient is a testify mock for Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TextResponse), args.Error(1)
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}

var _ Client = (*MockClient)(nil)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("Contact Email: info@acme.com\n"),
				genai.Text("Pain Points: slow hiring"),
			}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 120, CandidatesTokenCount: 30},
	}

	got, err := fromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Contact Email: info@acme.com\nPain Points: slow hiring", got.Text)
	assert.Equal(t, int32(120), got.Usage.PromptTokens)
	assert.Equal(t, int32(30), got.Usage.CandidatesTokens)
}

func TestFromResponse_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, "no candidates"},
		{"no candidates", &genai.GenerateContentResponse{}, "no candidates"},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, "no content"},
		{
			"no text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
			}}},
			"no text parts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromResponse(tt.resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type codedErr struct{ code int }

func (e codedErr) Error() string { return fmt.Sprintf("status %d", e.code) }
func (e codedErr) HTTPCode() int { return e.code }

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 429, StatusCode(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 429})))
	assert.Equal(t, 503, StatusCode(fmt.Errorf("wrapped: %w", codedErr{code: 503})))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.Equal(t, 0, StatusCode(nil))
}

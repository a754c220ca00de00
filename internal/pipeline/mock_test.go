package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// MockAnalyst implements agent.Analyst for testing.
type MockAnalyst struct {
	mock.Mock
}

func (m *MockAnalyst) Analyze(ctx context.Context, name, website string) (string, error) {
	args := m.Called(ctx, name, website)
	return args.String(0), args.Error(1)
}

// MockReviewer implements agent.Reviewer for testing.
type MockReviewer struct {
	mock.Mock
}

func (m *MockReviewer) Review(ctx context.Context, name, website, painPoints string) (string, error) {
	args := m.Called(ctx, name, website, painPoints)
	return args.String(0), args.Error(1)
}

// MockResearcher implements agent.Researcher for testing.
type MockResearcher struct {
	mock.Mock
}

func (m *MockResearcher) FindSources(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockResearcher) ExtractCompanies(ctx context.Context, sourceURL string) (string, error) {
	args := m.Called(ctx, sourceURL)
	return args.String(0), args.Error(1)
}

// panicAnalyst panics on every call.
type panicAnalyst struct{}

func (panicAnalyst) Analyze(context.Context, string, string) (string, error) {
	panic("analyst exploded")
}

package llm

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// Guarded routes every call through a per-provider circuit breaker.
type Guarded struct {
	next    Generator
	breaker *resilience.CircuitBreaker
}

// NewGuarded wraps next with breaker.
func NewGuarded(next Generator, breaker *resilience.CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) Name() string { return g.next.Name() }

func (g *Guarded) Generate(ctx context.Context, req Request) (string, error) {
	return resilience.Guard(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.next.Generate(ctx, req)
	})
}

// File: internal/infra/adapters/ai/limit_wrapper.go
package ai

import (
	"context"

	"care-compass/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ModelClient = (*limitedClient)(nil)

type limitedClient struct {
	inner adapter.ModelClient
	sem   chan struct{}
}

// NewLimitedClient caps concurrent model calls.
func NewLimitedClient(inner adapter.ModelClient, maxConcurrent int) adapter.ModelClient {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedClient{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedClient) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, prompt)
}

func (l *limitedClient) CountTokens(prompt string) int {
	return l.inner.CountTokens(prompt)
}

func (l *limitedClient) GetModelInfo() adapter.ModelInfo {
	return l.inner.GetModelInfo()
}

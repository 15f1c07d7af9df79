// File: internal/infra/adapters/ai/noop_ai.go
package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"care-compass/internal/domain/ports/adapter"
)

var _ adapter.ModelClient = (*NoopClient)(nil)

// NoopClient implements adapter.ModelClient for local/dev runs. It logs the
// prompt instead of calling a real model and returns a canned reply.
type NoopClient struct {
	log *zerolog.Logger
}

func NewNoopClient(log *zerolog.Logger) *NoopClient {
	return &NoopClient{log: log}
}

func (a *NoopClient) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	a.log.Debug().Int("prompt_len", len(prompt)).Msg("noop model call")
	return "I'm running in development mode, so I can't answer that in detail. " +
		"Try searching for clinics near you or ask about insurance options.", nil
}

func (a *NoopClient) CountTokens(prompt string) int {
	return len(prompt) / 4
}

func (a *NoopClient) GetModelInfo() adapter.ModelInfo {
	return adapter.ModelInfo{
		Name:        "noop-model",
		Description: "Development stand-in model",
		MaxTokens:   1024,
	}
}

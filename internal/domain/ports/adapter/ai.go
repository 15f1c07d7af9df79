package adapter

import "context"

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
}

// ModelClient is the port for the external language-model service. The
// composer hands it one opaque text prompt; it returns plain text. Providers
// may fail or rate-limit; callers treat that as an ordinary recoverable error.
type ModelClient interface {
	// Complete sends a composed prompt and returns the model's reply text.
	// Implementations must honor ctx cancellation and deadlines.
	Complete(ctx context.Context, prompt string) (string, error)

	// CountTokens returns a best-effort prompt token estimate.
	CountTokens(prompt string) int

	GetModelInfo() ModelInfo
}

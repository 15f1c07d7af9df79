// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"care-compass/internal/domain"
	"care-compass/internal/domain/ports/adapter"
)

var _ adapter.ModelClient = (*GeminiClient)(nil)

type GeminiClient struct {
	client *genai.Client
	model  string
	maxOut int
	info   adapter.ModelInfo
}

// NewGeminiClient creates a Gemini client using the official SDK. Model
// metadata is resolved once here; GetModelInfo never touches the network.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, maxOut int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	g := &GeminiClient{client: c, model: model, maxOut: maxOut}
	g.info = adapter.ModelInfo{Name: model}
	if m, err := c.Models.Get(ctx, model, nil); err == nil {
		g.info = adapter.ModelInfo{
			Name:        m.Name,
			Description: m.Description,
			MaxTokens:   int(m.InputTokenLimit),
		}
	}
	return g, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
		},
	)
	if err != nil {
		return "", err
	}
	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		return "", domain.ErrModelUnavailable
	}
	return text, nil
}

// CountTokens is a local estimate; the SDK's counter needs a round trip per
// prompt, which is too expensive on the hot path.
func (g *GeminiClient) CountTokens(prompt string) int {
	return len(prompt) / 4
}

func (g *GeminiClient) GetModelInfo() adapter.ModelInfo {
	return g.info
}

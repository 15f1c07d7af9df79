// File: internal/infra/adapters/ai/openai_adapter.go
package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"care-compass/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ModelClient = (*OpenAIClient)(nil)

// OpenAIClient implements adapter.ModelClient on the Chat Completions API.
type OpenAIClient struct {
	client openai.Client
	model  string
	maxOut int
	enc    *tiktoken.Tiktoken
}

func NewOpenAIClient(apiKey, model string, maxOut int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		maxOut: maxOut,
		enc:    enc,
	}, nil
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(o.maxOut)),
	})
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openai: no choice content")
}

func (o *OpenAIClient) CountTokens(prompt string) int {
	return len(o.enc.Encode(prompt, nil, nil))
}

func (o *OpenAIClient) GetModelInfo() adapter.ModelInfo {
	return adapter.ModelInfo{
		Name:        o.model,
		Description: "OpenAI Chat Completions model",
	}
}

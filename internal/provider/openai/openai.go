// Package openai implements provider.Provider on the OpenAI Chat Completions API
// (or any compatible endpoint) using github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arpita1049/Prashikshan-final/internal/provider"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.GPT4oMini

// ChatClient captures the subset of the go-openai client used by the adapter.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (
		openai.ChatCompletionResponse, error)
}

// Config selects the key, model and endpoint for the chat client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL points at an OpenAI-compatible endpoint. Empty uses api.openai.com.
	BaseURL string
}

// Provider generates text through chat completions.
type Provider struct {
	chat  ChatClient
	model string
}

// New builds a provider using the default go-openai HTTP client.
func New(cfg Config) (*Provider, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	cc := openai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.BaseURL = base
	}
	return NewWithClient(openai.NewClientWithConfig(cc), cfg.Model)
}

// NewWithClient wraps an existing chat client.
func NewWithClient(chat ChatClient, model string) (*Provider, error) {
	if chat == nil {
		return nil, errors.New("openai client is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Provider{chat: chat, model: model}, nil
}

// Name identifies the provider in logs and status output.
func (p *Provider) Name() string { return "openai" }

// Model reports the default model used when a request leaves Model empty.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}
	request := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.Schema != nil {
		// json_object mode requires the prompt to mention JSON; capability prompts do.
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func mapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &provider.StatusError{
			Provider:   "openai",
			StatusCode: apiErr.HTTPStatusCode,
			Status:     apiErr.Type,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &provider.StatusError{
			Provider:   "openai",
			StatusCode: reqErr.HTTPStatusCode,
			Message:    fmt.Sprint(reqErr.Err),
			Err:        err,
		}
	}
	return err
}

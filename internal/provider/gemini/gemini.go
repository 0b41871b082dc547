// Package gemini implements provider.Provider on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arpita1049/Prashikshan-final/internal/provider"
	"github.com/arpita1049/Prashikshan-final/internal/schema"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash"

// Config selects the key, model and endpoint for the Gemini client.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

// Provider generates text through GenerateContent.
type Provider struct {
	client *genai.Client
	model  string
}

// New builds a provider on the Gemini API backend.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, model: model}, nil
}

// Name identifies the provider in logs and status output.
func (p *Provider) Name() string { return "gemini" }

// Model reports the default model used when a request leaves Model empty.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Generate(ctx context.Context, req provider.Request) (string, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	cfg := &genai.GenerateContentConfig{CandidateCount: 1}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(*req.Schema)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", mapErr(err)
	}
	// A blank candidate is a completed call; callers decide how to degrade.
	return resp.Text(), nil
}

// mapErr turns API errors into provider.StatusError so the HTTP code is visible to
// classification. Transport errors pass through untouched.
func mapErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &provider.StatusError{
			Provider:   "gemini",
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return err
}

func toGenaiSchema(s schema.Schema) *genai.Schema {
	return objectSchema(s.Fields)
}

func objectSchema(fields []schema.Field) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
		Required:   make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		out.Properties[f.Name] = fieldSchema(f)
		out.Required = append(out.Required, f.Name)
	}
	return out
}

func fieldSchema(f schema.Field) *genai.Schema {
	var out *genai.Schema
	switch f.Type {
	case schema.TypeString:
		out = &genai.Schema{Type: genai.TypeString}
	case schema.TypeNumber:
		out = &genai.Schema{Type: genai.TypeNumber}
	case schema.TypeInteger:
		out = &genai.Schema{Type: genai.TypeInteger}
	case schema.TypeBoolean:
		out = &genai.Schema{Type: genai.TypeBoolean}
	case schema.TypeArray:
		out = &genai.Schema{Type: genai.TypeArray}
		if f.Items != nil {
			out.Items = fieldSchema(*f.Items)
		}
	default:
		out = objectSchema(f.Fields)
	}
	out.Description = f.Desc
	return out
}

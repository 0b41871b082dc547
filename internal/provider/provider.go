// Package provider defines the text-generation contract the capability layer calls.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/arpita1049/Prashikshan-final/internal/schema"
)

// Request is a single text-generation call.
type Request struct {
	Model  string
	Prompt string

	// Schema requests provider-native JSON output when set. Callers still parse the
	// response text since no provider guarantees strict JSON.
	Schema *schema.Schema
}

// Provider generates text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to a Provider.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StatusError is an HTTP-level provider failure. Its message carries the numeric code and
// status text so text-based classification sees them.
type StatusError struct {
	Provider   string
	StatusCode int
	// Status is the provider's status token, e.g. RESOURCE_EXHAUSTED.
	Status  string
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e == nil {
		return "provider error"
	}
	parts := []string{fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)}
	if text := http.StatusText(e.StatusCode); text != "" {
		parts[0] += " " + text
	}
	if e.Status != "" {
		parts = append(parts, e.Status)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ": ")
}

func (e *StatusError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Package structured pulls a JSON payload out of free-form model output.
package structured

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/arpita1049/Prashikshan-final/internal/schema"
)

// ErrNoPayload reports text that holds no valid JSON object or array.
var ErrNoPayload = errors.New("structured: no JSON payload")

var (
	fenceJSONRe = regexp.MustCompile("(?i)```json\\s*")
	fenceRe     = regexp.MustCompile("```\\s*")
)

// Extract returns the JSON candidate embedded in text: fences are stripped, then the span
// from the first '{' or '[' to the last '}' or ']' is taken. ok is false when no such
// span exists or it is not valid JSON.
func Extract(text string) (json.RawMessage, bool) {
	cleaned := fenceJSONRe.ReplaceAllString(text, "")
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexAny(cleaned, "{[")
	end := strings.LastIndexAny(cleaned, "}]")
	if start < 0 || end < start {
		return nil, false
	}
	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// Parse returns the decoded JSON value embedded in text, or nil when there is none.
// Objects decode to map[string]any and arrays to []any.
func Parse(text string) any {
	raw, ok := Extract(text)
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// Decode unmarshals the JSON payload embedded in text into v. It reports false when no
// payload is found or it does not fit v.
func Decode(text string, v any) bool {
	raw, ok := Extract(text)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// DecodeSchema is Decode with the numeric leniency of schema.Coerce applied first, so
// "score": 82.5 or "rating": "8" still fit their declared fields. The error says why the
// payload was rejected.
func DecodeSchema(text string, s schema.Schema, v any) error {
	raw, ok := Extract(text)
	if !ok {
		return ErrNoPayload
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return err
	}
	b, err := json.Marshal(s.Coerce(tree))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Package util holds small helpers shared across packages.
package util

import (
	"regexp"
	"strings"
)

var (
	// "Bearer <token>" as it appears in HTTP error bodies.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// key=value and key: value pairs for the provider credentials we read.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|(?:gemini|openai)[_-]?api[_-]?key|key)\b\s*[:=]\s*[^\s"'&]+`)

	// Google API keys are "AIza" plus 35 URL-safe characters.
	googleKeyRe = regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`)

	// OpenAI secret keys, including project-scoped ones.
	openAIKeyRe = regexp.MustCompile(`\bsk-[0-9A-Za-z_-]{20,}`)
)

// RedactSecrets removes credential-shaped substrings from a message before it is logged,
// written to a batch output or returned to a caller.
//
// Safe to call on any string, including user input and upstream error text.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = googleKeyRe.ReplaceAllString(out, "<redacted_key>")
	out = openAIKeyRe.ReplaceAllString(out, "<redacted_key>")
	return strings.TrimSpace(out)
}

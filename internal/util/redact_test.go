package util

import "testing"

func TestRedactSecrets(t *testing.T) {
	googleKey := "AIza" + "SyA1234567890abcdefghijklmnopqrstuv"
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "  server unavailable  ", want: "server unavailable"},
		{name: "bearer", in: `401: Bearer eyJhbGciOi.abc.def rejected`, want: "401: Bearer <redacted> rejected"},
		{name: "api_key_kv", in: "request failed api_key=abc123 retry", want: "request failed <redacted_kv> retry"},
		{name: "gemini_env_kv", in: "GEMINI_API_KEY: abc123", want: "<redacted_kv>"},
		{name: "query_key", in: "GET /v1beta/models?key=abc123&alt=json", want: "GET /v1beta/models?<redacted_kv>&alt=json"},
		{name: "google_key", in: "invalid key " + googleKey + " supplied", want: "invalid key <redacted_key> supplied"},
		{name: "openai_key", in: "Incorrect API key provided: sk-proj-abcdefghijklmnopqrstuvwx", want: "Incorrect API key provided: <redacted_key>"},
		{name: "short_key_word_untouched", in: "keyboard shortcuts", want: "keyboard shortcuts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactSecrets(tt.in); got != tt.want {
				t.Fatalf("RedactSecrets(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

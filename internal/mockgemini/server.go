// Package mockgemini serves a minimal Gemini-compatible generateContent endpoint with
// scripted replies, for tests and local demos without an API key.
package mockgemini

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultReply is returned when no scripted reply is queued and no default is set.
const DefaultReply = "Hello from the mock Gemini server."

// Reply is one scripted response.
type Reply struct {
	// StatusCode is the HTTP status. 0 means 200.
	StatusCode int
	// Text is the candidate text on success.
	Text string
	// Status is the Google RPC status token on failure, e.g. UNAVAILABLE.
	Status string
	// Message is the error message on failure.
	Message string
	// Delay holds the response back; it is abandoned if the client goes away.
	Delay time.Duration
}

// Text returns a successful reply with the given candidate text.
func Text(s string) Reply {
	return Reply{Text: s}
}

// Failure returns an error reply with the canonical status token for code.
func Failure(code int, message string) Reply {
	return Reply{StatusCode: code, Status: statusToken(code), Message: message}
}

// Call records a request made to the mock service.
type Call struct {
	Method string
	Path   string
	Model  string
	APIKey string
	Prompt string

	ResponseMIMEType string
	HasSchema        bool
}

// Server implements the generateContent surface of the Gemini REST API.
type Server struct {
	mu    sync.Mutex
	calls []Call
	queue []Reply
	def   Reply

	expectedKey string
}

// New constructs a new mock server.
func New() *Server {
	return &Server{def: Text(DefaultReply)}
}

// Enqueue appends scripted replies. They are served in order, one per request; once the
// queue drains the default reply is served.
func (s *Server) Enqueue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, replies...)
}

// SetDefault sets the reply served when the queue is empty.
func (s *Server) SetDefault(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = r
}

// RequireAPIKey rejects requests whose x-goog-api-key header does not match key with a
// 403 PERMISSION_DENIED. An empty key disables the check.
func (s *Server) RequireAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectedKey = strings.TrimSpace(key)
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return mux
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig *struct {
		ResponseMIMEType string          `json:"responseMimeType"`
		ResponseSchema   json.RawMessage `json:"responseSchema"`
	} `json:"generationConfig"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	// /{version}/models/{model}:generateContent
	model, ok := parseModelPath(r.URL.Path)
	if !ok {
		writeError(w, Failure(http.StatusNotFound, fmt.Sprintf("unknown path %s", r.URL.Path)))
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, Failure(http.StatusMethodNotAllowed, "method not allowed"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, Failure(http.StatusBadRequest, fmt.Sprintf("read body: %v", err)))
		return
	}
	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, Failure(http.StatusBadRequest, fmt.Sprintf("decode body: %v", err)))
		return
	}

	call := Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Model:  model,
		APIKey: r.Header.Get("x-goog-api-key"),
		Prompt: joinPrompt(req),
	}
	if gc := req.GenerationConfig; gc != nil {
		call.ResponseMIMEType = gc.ResponseMIMEType
		call.HasSchema = len(gc.ResponseSchema) > 0 && string(gc.ResponseSchema) != "null"
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	if s.expectedKey != "" && call.APIKey != s.expectedKey {
		s.mu.Unlock()
		writeError(w, Failure(http.StatusForbidden, "API key not valid. Please pass a valid API key."))
		return
	}
	reply := s.def
	if len(s.queue) > 0 {
		reply = s.queue[0]
		s.queue = s.queue[1:]
	}
	s.mu.Unlock()

	if reply.Delay > 0 {
		t := time.NewTimer(reply.Delay)
		select {
		case <-t.C:
		case <-r.Context().Done():
			t.Stop()
			return
		}
	}

	if reply.StatusCode != 0 && reply.StatusCode != http.StatusOK {
		writeError(w, reply)
		return
	}
	writeText(w, reply.Text)
}

func parseModelPath(p string) (string, bool) {
	_, rest, ok := strings.Cut(p, "/models/")
	if !ok {
		return "", false
	}
	model, method, ok := strings.Cut(rest, ":")
	if !ok || method != "generateContent" || model == "" {
		return "", false
	}
	return model, true
}

func joinPrompt(req generateRequest) string {
	var parts []string
	for _, c := range req.Contents {
		for _, p := range c.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func writeText(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
				"index":        0,
			},
		},
		"modelVersion": "mock",
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, r Reply) {
	code := r.StatusCode
	if code == 0 {
		code = http.StatusInternalServerError
	}
	status := r.Status
	if status == "" {
		status = statusToken(code)
	}
	msg := r.Message
	if msg == "" {
		msg = http.StatusText(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
			"status":  status,
		},
	})
}

func statusToken(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusTooManyRequests:
		return "RESOURCE_EXHAUSTED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "DEADLINE_EXCEEDED"
	default:
		if code >= 500 {
			return "INTERNAL"
		}
		return "UNKNOWN"
	}
}

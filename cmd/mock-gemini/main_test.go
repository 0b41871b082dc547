package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const body = `{"contents":[{"role":"user","parts":[{"text":"hi"}]}]}`

func post(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Post(url+"/v1beta/models/gemini-2.0-flash:generateContent", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestNewServer_FailuresThenReply(t *testing.T) {
	srv, err := newServer(options{reply: `{"ok":true}`, failStatus: http.StatusTooManyRequests, failCount: 2})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var got []int
	for i := 0; i < 3; i++ {
		got = append(got, post(t, ts.URL))
	}
	want := []int{429, 429, 200}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status sequence = %v, want %v", got, want)
		}
	}
}

func TestNewServer_ReplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.json")
	if err := os.WriteFile(path, []byte(`{"score":90}`), 0o644); err != nil {
		t.Fatalf("write reply file: %v", err)
	}
	if _, err := newServer(options{replyFile: path}); err != nil {
		t.Fatalf("newServer: %v", err)
	}
	if _, err := newServer(options{replyFile: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing reply file")
	}
}

func TestNewServer_RejectsNonErrorFailStatus(t *testing.T) {
	if _, err := newServer(options{failStatus: 200, failCount: 1}); err == nil {
		t.Fatal("expected error for fail-status 200")
	}
}

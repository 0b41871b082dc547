package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arpita1049/Prashikshan-final/internal/career"
	"github.com/arpita1049/Prashikshan-final/internal/mockgemini"
	"github.com/arpita1049/Prashikshan-final/internal/resilience"
	"github.com/arpita1049/Prashikshan-final/internal/version"
)

// demoEnv clears every credential variable so commands run in demo mode without delays.
func demoEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "VITE_GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "AI_PROVIDER", "AI_MODEL", "AI_BASE_URL", "CACHE_BACKEND"} {
		t.Setenv(k, "")
	}
	t.Setenv("DEMO_DELAY", "0s")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"serve", "chat", "resume", "interview", "tutor", "status", "batch-resume", "version"} {
		require.Contains(t, names, want)
	}
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("debug"))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "careerai "+version.Current+"\n", out)
}

func TestDemoCommands(t *testing.T) {
	demoEnv(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		check func(t *testing.T, m map[string]any)
	}{
		{
			name: "chat",
			args: []string{"chat", "--context", `{"name":"Asha"}`, "what", "should", "I", "learn?"},
			check: func(t *testing.T, m map[string]any) {
				require.Contains(t, m["reply"], "Demo Mode")
			},
		},
		{
			name: "resume_args",
			args: []string{"resume", "Built a compiler"},
			check: func(t *testing.T, m map[string]any) {
				require.Equal(t, float64(82), m["score"])
			},
		},
		{
			name:  "resume_stdin",
			stdin: "Led the robotics club",
			args:  []string{"resume", "--file", "-"},
			check: func(t *testing.T, m map[string]any) {
				require.Len(t, m["improvements"], 3)
			},
		},
		{
			name: "interview",
			args: []string{"interview", "-q", "Why us?", "-a", "Because."},
			check: func(t *testing.T, m map[string]any) {
				require.Equal(t, 8.5, m["rating"])
			},
		},
		{
			name: "tutor",
			args: []string{"tutor", "--score", "2", "--total", "5", "--domain", "Frontend"},
			check: func(t *testing.T, m map[string]any) {
				require.Equal(t, "Beginner", m["level"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &m))
			require.Equal(t, true, m["isDemo"])
			tt.check(t, m)
		})
	}
}

func TestStatusCmd_Demo(t *testing.T) {
	demoEnv(t)
	out, err := run(t, "", "status")
	require.NoError(t, err)
	require.JSONEq(t, `{"hasKey":false,"isReady":false}`, out)
}

func TestCommands_InputErrors(t *testing.T) {
	demoEnv(t)

	_, err := run(t, "", "resume")
	require.ErrorContains(t, err, "resume text is required")

	_, err = run(t, "", "chat", "--context", "[1,2]", "hi")
	require.ErrorContains(t, err, "--context must be a JSON object")

	_, err = run(t, "", "interview", "-q", "only a question")
	require.ErrorContains(t, err, "answer")

	_, err = run(t, "", "batch-resume", "--input", "in.csv")
	require.ErrorContains(t, err, "output")
}

func TestConfigErrorFailsCommand(t *testing.T) {
	demoEnv(t)
	t.Setenv("MAX_ATTEMPTS", "zero")
	_, err := run(t, "", "status")
	require.ErrorContains(t, err, "load config")
}

func TestInterviewCmd_AgainstMockGemini(t *testing.T) {
	demoEnv(t)

	mock := mockgemini.New()
	mock.RequireAPIKey("test-key")
	mock.Enqueue(
		mockgemini.Failure(http.StatusServiceUnavailable, "overloaded"),
		mockgemini.Text("```json\n{\"feedback\":\"Clear.\",\"betterAnswer\":\"Add a metric.\",\"rating\":7}\n```"),
	)
	ts := httptest.NewServer(mock.Handler())
	t.Cleanup(ts.Close)

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AI_BASE_URL", ts.URL)
	t.Setenv("BASE_DELAY", "1ms")
	t.Setenv("JITTER_MAX", "0s")

	out, err := run(t, "", "interview", "-q", "Tell me about a project", "-a", "I built a thing")
	require.NoError(t, err)

	var got career.InterviewFeedback
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "Add a metric.", got.BetterAnswer)
	require.Equal(t, 7.0, got.Rating)
	require.False(t, got.IsFallback)
	require.Len(t, mock.Calls(), 2)

	out, err = run(t, "", "status")
	require.NoError(t, err)
	require.JSONEq(t, `{"hasKey":true,"isReady":true,"provider":"gemini","model":"gemini-2.0-flash"}`, out)
}

func TestInterviewCmd_FallbackOnAuthFailure(t *testing.T) {
	demoEnv(t)

	mock := mockgemini.New()
	mock.RequireAPIKey("right-key")
	ts := httptest.NewServer(mock.Handler())
	t.Cleanup(ts.Close)

	t.Setenv("GEMINI_API_KEY", "wrong-key")
	t.Setenv("AI_BASE_URL", ts.URL)

	out, err := run(t, "", "interview", "-q", "q", "-a", "a")
	require.NoError(t, err)

	var got career.InterviewFeedback
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.True(t, got.IsFallback)
	require.Equal(t, resilience.MessageInvalidCredential, got.ErrorMessage)
	require.Len(t, mock.Calls(), 1, "credential failures are not retried")
}

func TestBatchResumeCmd_Demo(t *testing.T) {
	demoEnv(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,resume\na,Built things\nb,\n"), 0o644))

	_, err := run(t, "", "batch-resume", "--input", in, "--output", out, "--workers", "2")
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "a,82,"), lines[1])
	require.True(t, strings.HasSuffix(lines[1], ",demo,,ok,"), lines[1])
	require.Equal(t, "b,,,,,,error,empty resume text", lines[2])
}

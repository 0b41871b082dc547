package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arpita1049/Prashikshan-final/internal/mockgemini"
)

type options struct {
	addr       string
	apiKey     string
	reply      string
	replyFile  string
	failStatus int
	failCount  int
	delay      time.Duration
}

func main() {
	opts := options{
		addr:       defaultString("MOCK_GEMINI_ADDR", ":8090"),
		apiKey:     defaultString("MOCK_GEMINI_API_KEY", ""),
		reply:      defaultString("MOCK_GEMINI_REPLY", mockgemini.DefaultReply),
		failStatus: defaultInt("MOCK_GEMINI_FAIL_STATUS", http.StatusServiceUnavailable),
	}

	fs := flag.NewFlagSet("mock-gemini", flag.ExitOnError)
	fs.StringVar(&opts.addr, "addr", opts.addr, "Listen address")
	fs.StringVar(&opts.apiKey, "api-key", opts.apiKey, "Reject requests without this x-goog-api-key (empty accepts any)")
	fs.StringVar(&opts.reply, "reply", opts.reply, "Candidate text returned on success")
	fs.StringVar(&opts.replyFile, "reply-file", "", "Read the success text from a file (overrides --reply)")
	fs.IntVar(&opts.failStatus, "fail-status", opts.failStatus, "HTTP status returned for the first --fail-count requests")
	fs.IntVar(&opts.failCount, "fail-count", 0, "Number of leading requests that fail with --fail-status")
	fs.DurationVar(&opts.delay, "delay", 0, "Delay before every successful reply")
	_ = fs.Parse(os.Args[1:])

	srv, err := newServer(opts)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	_, _ = fmt.Fprintf(os.Stdout, "mock-gemini listening on %s (fail=%dx%d delay=%s)\n", opts.addr, opts.failCount, opts.failStatus, opts.delay)
	if err := http.ListenAndServe(opts.addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(opts options) (*mockgemini.Server, error) {
	text := opts.reply
	if opts.replyFile != "" {
		b, err := os.ReadFile(opts.replyFile)
		if err != nil {
			return nil, fmt.Errorf("read reply file: %w", err)
		}
		text = string(b)
	}
	if opts.failCount > 0 && (opts.failStatus < 400 || opts.failStatus > 599) {
		return nil, fmt.Errorf("fail-status must be a 4xx or 5xx code, got %d", opts.failStatus)
	}

	srv := mockgemini.New()
	srv.RequireAPIKey(opts.apiKey)
	srv.SetDefault(mockgemini.Reply{Text: text, Delay: opts.delay})
	for i := 0; i < opts.failCount; i++ {
		srv.Enqueue(mockgemini.Failure(opts.failStatus, "injected failure"))
	}
	return srv, nil
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(envVar string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil {
		return fallback
	}
	return n
}

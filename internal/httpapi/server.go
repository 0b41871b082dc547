// Package httpapi exposes the career capabilities as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arpita1049/Prashikshan-final/internal/career"
)

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Service is the capability surface served over HTTP. *career.Service implements it.
type Service interface {
	ChatbotReply(ctx context.Context, message string, userContext map[string]any) career.ChatReply
	AnalyzeResume(ctx context.Context, resumeText string) career.ResumeAnalysis
	InterviewFeedback(ctx context.Context, question, answer string) career.InterviewFeedback
	TutorPlan(ctx context.Context, score, total int, domain string) career.TutorPlan
	Status() career.Status
}

type ChatRequest struct {
	Message     string         `json:"message"`
	UserContext map[string]any `json:"userContext"`
}

type ResumeRequest struct {
	ResumeText string `json:"resumeText"`
}

type InterviewRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type TutorRequest struct {
	Score  int    `json:"score"`
	Total  int    `json:"total"`
	Domain string `json:"domain"`
}

// Options configures the HTTP surface.
type Options struct {
	Logger *slog.Logger
	// Gatherer backs /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
}

type server struct {
	svc    Service
	logger *slog.Logger
}

// Handler builds the router.
func Handler(svc Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &server{svc: svc, logger: logger}

	metricsHandler := promhttp.Handler()
	if opts.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	}

	router := mux.NewRouter()
	router.Use(s.requestID, s.accessLog)

	router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.status).Methods(http.MethodGet)
	api.HandleFunc("/chat", s.chat).Methods(http.MethodPost)
	api.HandleFunc("/resume/analyze", s.analyzeResume).Methods(http.MethodPost)
	api.HandleFunc("/interview/feedback", s.interviewFeedback).Methods(http.MethodPost)
	api.HandleFunc("/tutor/plan", s.tutorPlan).Methods(http.MethodPost)

	return router
}

// NewServer wraps h in an http.Server. requestBudget is the longest a capability call may
// take, retries included; the write timeout is derived from it.
func NewServer(addr string, h http.Handler, requestBudget time.Duration) *http.Server {
	if requestBudget <= 0 {
		requestBudget = 2 * time.Minute
	}
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestBudget + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *server) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ChatbotReply(r.Context(), req.Message, req.UserContext))
}

func (s *server) analyzeResume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.AnalyzeResume(r.Context(), req.ResumeText))
}

func (s *server) interviewFeedback(w http.ResponseWriter, r *http.Request) {
	var req InterviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.InterviewFeedback(r.Context(), req.Question, req.Answer))
}

func (s *server) tutorPlan(w http.ResponseWriter, r *http.Request) {
	var req TutorRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.TutorPlan(r.Context(), req.Score, req.Total, req.Domain))
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

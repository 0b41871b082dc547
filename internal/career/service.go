// Package career serves the AI-backed career features: chatbot replies, resume critique,
// interview feedback and tutor plans.
//
// Every operation returns a structurally valid payload. Provider failures never surface
// as errors; they degrade to a fixed fallback payload whose provenance flags say so.
package career

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/arpita1049/Prashikshan-final/internal/cache"
	"github.com/arpita1049/Prashikshan-final/internal/provider"
	"github.com/arpita1049/Prashikshan-final/internal/resilience"
	"github.com/arpita1049/Prashikshan-final/internal/schema"
	"github.com/arpita1049/Prashikshan-final/internal/structured"
	"github.com/arpita1049/Prashikshan-final/internal/util"
)

// Cache key prefix lengths, in runes, per input field.
const (
	resumeKeyRunes    = 100
	interviewKeyRunes = 50
	tutorKeyRunes     = 100
)

// Options configures a Service.
type Options struct {
	// Provider generates text. Nil puts the service in demo mode.
	Provider provider.Provider
	// Model overrides the provider's default model.
	Model string

	// Cache defaults to an in-memory cache with a 10 minute TTL.
	Cache cache.Store
	// Orchestrator defaults to resilience.DefaultOptions.
	Orchestrator *resilience.Orchestrator

	DemoDelays DemoDelays
	Recorder   Recorder
	Logger     *slog.Logger

	// Sleep waits out demo delays. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Service is the capability facade. It is safe for concurrent use.
type Service struct {
	provider   provider.Provider
	model      string
	cache      cache.Store
	orch       *resilience.Orchestrator
	demoDelays DemoDelays
	recorder   Recorder
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New constructs a Service.
func New(opts Options) (*Service, error) {
	s := &Service{
		provider:   opts.Provider,
		model:      strings.TrimSpace(opts.Model),
		cache:      opts.Cache,
		orch:       opts.Orchestrator,
		demoDelays: opts.DemoDelays,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
		sleep:      opts.Sleep,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(cache.MemoryOptions{})
	}
	if s.orch == nil {
		ro := resilience.DefaultOptions()
		ro.Logger = s.logger
		orch, err := resilience.New(ro)
		if err != nil {
			return nil, fmt.Errorf("build orchestrator: %w", err)
		}
		s.orch = orch
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.sleep == nil {
		s.sleep = sleepCtx
	}
	return s, nil
}

// Status reports whether a provider is configured.
func (s *Service) Status() Status {
	if s.provider == nil {
		return Status{}
	}
	st := Status{HasKey: true, IsReady: true, Provider: s.provider.Name(), Model: s.model}
	if st.Model == "" {
		if m, ok := s.provider.(interface{ Model() string }); ok {
			st.Model = m.Model()
		}
	}
	return st
}

// ChatbotReply answers a free-form message using the user's profile as context.
// Replies are not cached.
func (s *Service) ChatbotReply(ctx context.Context, message string, userContext map[string]any) ChatReply {
	if s.provider == nil {
		s.demoWait(ctx, s.demoDelays.Chat)
		s.served(CapabilityChat, OutcomeDemo, 0)
		return ChatReply{Reply: demoChatReply, Provenance: Provenance{IsDemo: true}}
	}

	prompt := chatPrompt(message, userContext)
	res := resilience.Execute(ctx, s.orch, CapabilityChat, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, provider.Request{Model: s.model, Prompt: prompt})
	})
	if res.OK() && strings.TrimSpace(res.Value) != "" {
		s.served(CapabilityChat, OutcomeLive, res.Attempts)
		return ChatReply{Reply: res.Value}
	}

	reply := ChatReply{Reply: defaultChatReply, Provenance: Provenance{IsFallback: true}}
	if !res.OK() && res.Err.Message != "" {
		reply.Reply = res.Err.Message
		reply.ErrorMessage = util.RedactSecrets(res.Err.Message)
	}
	s.served(CapabilityChat, OutcomeFallback, res.Attempts)
	return reply
}

// AnalyzeResume critiques resume text.
func (s *Service) AnalyzeResume(ctx context.Context, resumeText string) ResumeAnalysis {
	return invoke(ctx, s, call[ResumeAnalysis]{
		capability: CapabilityResume,
		key:        cache.Key(CapabilityResume, resumeKeyRunes, resumeText),
		schema:     resumeSchema,
		prompt:     func() string { return resumePrompt(resumeText) },
		fallback:   fallbackResume,
		demoDelay:  s.demoDelays.Resume,
	})
}

// InterviewFeedback evaluates a practice answer to an interview question.
func (s *Service) InterviewFeedback(ctx context.Context, question, answer string) InterviewFeedback {
	return invoke(ctx, s, call[InterviewFeedback]{
		capability: CapabilityInterview,
		key:        cache.Key(CapabilityInterview, interviewKeyRunes, question, answer),
		schema:     interviewSchema,
		prompt:     func() string { return interviewPrompt(question, answer) },
		fallback:   fallbackInterview,
		demoDelay:  s.demoDelays.Interview,
	})
}

// TutorPlan builds a learning plan from a quiz result.
func (s *Service) TutorPlan(ctx context.Context, score, total int, domain string) TutorPlan {
	return invoke(ctx, s, call[TutorPlan]{
		capability: CapabilityTutor,
		key:        cache.Key(CapabilityTutor, tutorKeyRunes, domain, fmt.Sprintf("%d/%d", score, total)),
		schema:     tutorSchema,
		prompt:     func() string { return tutorPrompt(score, total, domain) },
		fallback:   func() TutorPlan { return fallbackTutor(score, domain) },
		demoDelay:  s.demoDelays.Tutor,
	})
}

type call[T any] struct {
	capability string
	key        string
	schema     schema.Schema
	prompt     func() string
	fallback   func() T
	demoDelay  time.Duration
}

type payload[T any] interface {
	*T
	meta() *Provenance
}

// invoke runs demo check, cache lookup, orchestrated provider call, parse and cache store,
// in that order, falling back to c.fallback on failure.
func invoke[T any, P payload[T]](ctx context.Context, s *Service, c call[T]) T {
	if s.provider == nil {
		s.demoWait(ctx, c.demoDelay)
		out := c.fallback()
		P(&out).meta().IsDemo = true
		s.served(c.capability, OutcomeDemo, 0)
		return out
	}

	if out, ok := lookup[T, P](ctx, s, c); ok {
		s.served(c.capability, OutcomeCache, 0)
		return out
	}

	prompt := c.prompt()
	res := resilience.Execute(ctx, s.orch, c.capability, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, provider.Request{Model: s.model, Prompt: prompt, Schema: &c.schema})
	})
	if !res.OK() {
		out := c.fallback()
		m := P(&out).meta()
		m.IsFallback = true
		m.ErrorMessage = util.RedactSecrets(res.Err.Message)
		s.served(c.capability, OutcomeFallback, res.Attempts)
		return out
	}

	var out T
	if err := structured.DecodeSchema(res.Value, c.schema, &out); err != nil {
		s.logger.Warn("provider response has no usable JSON payload",
			"capability", c.capability,
			"response_len", len(res.Value),
			"error", err,
		)
		out = c.fallback()
		P(&out).meta().IsFallback = true
		s.served(c.capability, OutcomeFallback, res.Attempts)
		return out
	}
	*P(&out).meta() = Provenance{}

	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.Put(ctx, c.key, b); err != nil {
			s.logger.Warn("cache put failed", "capability", c.capability, "error", util.RedactSecrets(err.Error()))
		}
	}
	s.served(c.capability, OutcomeLive, res.Attempts)
	return out
}

func lookup[T any, P payload[T]](ctx context.Context, s *Service, c call[T]) (T, bool) {
	var out T
	b, ok, err := s.cache.Get(ctx, c.key)
	if err != nil {
		s.logger.Warn("cache get failed", "capability", c.capability, "error", util.RedactSecrets(err.Error()))
	}
	if err != nil || !ok {
		s.recorder.CacheLookup(c.capability, false)
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "capability", c.capability, "error", err)
		s.recorder.CacheLookup(c.capability, false)
		return out, false
	}
	s.recorder.CacheLookup(c.capability, true)
	P(&out).meta().FromCache = true
	return out, true
}

func (s *Service) served(capability string, outcome Outcome, attempts int) {
	s.recorder.Outcome(capability, outcome)
	level := slog.LevelDebug
	if outcome == OutcomeFallback {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "capability served",
		"capability", capability,
		"outcome", string(outcome),
		"attempts", attempts,
	)
}

// demoWait sleeps for d. Cancellation cuts the wait short but still yields a demo payload.
func (s *Service) demoWait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	_ = s.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

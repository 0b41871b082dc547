package career

import "time"

// Capability names, used for cache keys, log labels and metrics.
const (
	CapabilityChat      = "chat"
	CapabilityResume    = "resume"
	CapabilityInterview = "interview"
	CapabilityTutor     = "tutor"
)

// Provenance flags tell callers how a payload was produced. They never change its shape.
type Provenance struct {
	FromCache    bool   `json:"fromCache,omitempty"`
	IsDemo       bool   `json:"isDemo,omitempty"`
	IsFallback   bool   `json:"isFallback,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (p *Provenance) meta() *Provenance { return p }

// ChatReply is a chatbot answer. Chat is free text, so it has no requested schema.
type ChatReply struct {
	Reply string `json:"reply"`
	Provenance
}

// ResumeAnalysis is the resume critique payload.
type ResumeAnalysis struct {
	Score        int      `json:"score" desc:"number (0-100, overall resume quality)"`
	Strengths    []string `json:"strengths" desc:"array of 3 specific strengths"`
	Improvements []string `json:"improvements" desc:"array of 3 specific areas to improve"`
	Provenance
}

// InterviewFeedback is the practice-answer evaluation payload.
type InterviewFeedback struct {
	Feedback     string  `json:"feedback" desc:"string (constructive evaluation, what was good, what could improve)"`
	BetterAnswer string  `json:"betterAnswer" desc:"string (an example of a stronger response)"`
	Rating       float64 `json:"rating" desc:"number (1-10 score)"`
	Provenance
}

// Assignment is one practice task in a tutor plan.
type Assignment struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// TutorPlan is the personalized learning plan payload.
type TutorPlan struct {
	Level             string       `json:"level" desc:"string (\"Beginner\", \"Intermediate\", or \"Advanced\")"`
	Feedback          string       `json:"feedback" desc:"string (personalized encouragement and assessment)"`
	WeakAreas         []string     `json:"weakAreas" desc:"array of 2-3 topic strings they should focus on"`
	Assignments       []Assignment `json:"assignments" desc:"array of 3 objects with {title, description, difficulty}"`
	RecommendedSkills []string     `json:"recommendedSkills" desc:"array of 3 related skills to learn next"`
	Provenance
}

// Status reports whether a provider credential is configured.
type Status struct {
	HasKey   bool   `json:"hasKey"`
	IsReady  bool   `json:"isReady"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Outcome is how a capability call was served.
type Outcome string

const (
	OutcomeLive     Outcome = "live"
	OutcomeCache    Outcome = "cache"
	OutcomeDemo     Outcome = "demo"
	OutcomeFallback Outcome = "fallback"
)

// Recorder observes facade activity. Implementations must be safe for concurrent use.
type Recorder interface {
	CacheLookup(capability string, hit bool)
	Outcome(capability string, outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(string, bool) {}
func (nopRecorder) Outcome(string, Outcome)  {}

// DemoDelays are the simulated provider latencies used in demo mode.
type DemoDelays struct {
	Chat      time.Duration `yaml:"chat"`
	Resume    time.Duration `yaml:"resume"`
	Interview time.Duration `yaml:"interview"`
	Tutor     time.Duration `yaml:"tutor"`
}

// DefaultDemoDelays returns 500ms for chat, 800ms for resumes and 1s otherwise.
func DefaultDemoDelays() DemoDelays {
	return DemoDelays{
		Chat:      500 * time.Millisecond,
		Resume:    800 * time.Millisecond,
		Interview: time.Second,
		Tutor:     time.Second,
	}
}

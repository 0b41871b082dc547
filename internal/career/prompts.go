package career

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/arpita1049/Prashikshan-final/internal/schema"
)

const resumePromptRunes = 2000

var (
	resumeSchema    = schema.For[ResumeAnalysis]()
	interviewSchema = schema.For[InterviewFeedback]()
	tutorSchema     = schema.For[TutorPlan]()
)

func chatPrompt(message string, userContext map[string]any) string {
	profile := "{}"
	if len(userContext) > 0 {
		if b, err := json.Marshal(userContext); err == nil {
			profile = string(b)
		}
	}
	return fmt.Sprintf(`You are "Prashikshan Assistant", a friendly and helpful AI career coach.
Current User Profile: %s.
Keep responses concise, helpful, and encouraging. Use emojis sparingly for warmth.

User Message: %s`, profile, message)
}

func resumePrompt(resumeText string) string {
	return fmt.Sprintf(`Analyze this resume and provide constructive feedback.

Return a JSON object with:
%s

Resume text (first %d chars):
%s`, resumeSchema.PromptLines(), resumePromptRunes, firstRunes(resumeText, resumePromptRunes))
}

func interviewPrompt(question, answer string) string {
	return fmt.Sprintf(`You are an interview coach. Evaluate this practice interview response.

Question: %s
User's Answer: %s

Provide constructive feedback. Return a JSON object with:
%s`, question, answer, interviewSchema.PromptLines())
}

func tutorPrompt(score, total int, domain string) string {
	return fmt.Sprintf(`You are a learning coach. A student scored %d/%d (%d%%) in %s.

Create a personalized learning plan. Return a JSON object with:
%s`, score, total, percentage(score, total), domain, tutorSchema.PromptLines())
}

// percentage rounds half away from zero. A non-positive total yields 0.
func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

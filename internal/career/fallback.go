package career

import "fmt"

const (
	demoChatReply    = "I'm running in Demo Mode (no API Key). Add your Gemini API key to .env to enable AI features!"
	defaultChatReply = "I'm having trouble right now. Please try again in a moment."
)

// Fallback payloads are fixed. Each call returns fresh slices.

func fallbackResume() ResumeAnalysis {
	return ResumeAnalysis{
		Score: 82,
		Strengths: []string{
			"Strong action verbs used throughout experience section",
			"Clear quantification of achievements (e.g., 'increased efficiency by 20%')",
			"Skills section is well-categorized and relevant",
		},
		Improvements: []string{
			"Add a brief professional summary at the top",
			"Ensure consistent date formatting across all entries",
			"Include links to GitHub or portfolio projects",
		},
	}
}

func fallbackInterview() InterviewFeedback {
	return InterviewFeedback{
		Feedback:     "Great start! You structured your answer using the STAR method which is excellent. However, try to focus more on the 'Result' aspect. Quantify the impact of your actions where possible.",
		BetterAnswer: "In my previous role, I encountered a conflict where two team members disagreed on the API architecture. I facilitated a meeting to list pros and cons of each approach. We realized a hybrid solution was best. This decision reduced our technical debt by 15% and accelerated delivery by 2 weeks.",
		Rating:       8.5,
	}
}

func fallbackTutor(score int, domain string) TutorPlan {
	level := "Beginner"
	if score > 3 {
		level = "Intermediate"
	}
	return TutorPlan{
		Level:     level,
		Feedback:  fmt.Sprintf("You have a solid grasp of %s fundamentals, but could improve on advanced concepts.", domain),
		WeakAreas: []string{"State Management Patterns", "Performance Optimization"},
		Assignments: []Assignment{
			{
				Title:       "Refactor Context API",
				Description: "Take a prop-drilled component tree and refactor it to use React Context efficiently.",
				Difficulty:  "Medium",
			},
			{
				Title:       "Implement Memoization",
				Description: "Use React.memo and useMemo to optimize a heavy rendering list.",
				Difficulty:  "Hard",
			},
			{
				Title:       "Custom Hooks 101",
				Description: "Create a custom hook useFetch that handles loading, error, and data states.",
				Difficulty:  "Easy",
			},
		},
		RecommendedSkills: []string{"Redux Toolkit", "Next.js", "Jest Testing"},
	}
}

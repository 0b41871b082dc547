package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withService builds a service for a one-shot command and releases it afterwards.
func (c *cli) withService(cmd *cobra.Command, fn func(rt *stack) any) error {
	rt, err := c.build(cmd.Context(), prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer rt.close()
	return printJSON(cmd.OutOrStdout(), fn(rt))
}

func newChatCmd(c *cli) *cobra.Command {
	var userContext string
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the career coach chatbot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var profile map[string]any
			if strings.TrimSpace(userContext) != "" {
				if err := json.Unmarshal([]byte(userContext), &profile); err != nil {
					return fmt.Errorf("--context must be a JSON object: %w", err)
				}
			}
			message := strings.Join(args, " ")
			return c.withService(cmd, func(rt *stack) any {
				return rt.svc.ChatbotReply(cmd.Context(), message, profile)
			})
		},
	}
	cmd.Flags().StringVar(&userContext, "context", "", `user profile as a JSON object, e.g. '{"name":"Asha","year":3}'`)
	return cmd
}

func newResumeCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "resume [text]",
		Short: "Critique a resume",
		Long:  "Critique a resume given as arguments, with --file, or on stdin when --file is \"-\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := resumeText(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			return c.withService(cmd, func(rt *stack) any {
				return rt.svc.AnalyzeResume(cmd.Context(), text)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `read the resume from a file ("-" for stdin)`)
	return cmd
}

func resumeText(stdin io.Reader, file string, args []string) (string, error) {
	var b []byte
	var err error
	switch {
	case file == "-":
		b, err = io.ReadAll(stdin)
	case file != "":
		b, err = os.ReadFile(file)
	default:
		b = []byte(strings.Join(args, " "))
	}
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	text := string(b)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("resume text is required")
	}
	return text, nil
}

func newInterviewCmd(c *cli) *cobra.Command {
	var question, answer string
	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Get feedback on an interview answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(rt *stack) any {
				return rt.svc.InterviewFeedback(cmd.Context(), question, answer)
			})
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "interview question")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "candidate answer")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func newTutorCmd(c *cli) *cobra.Command {
	var score, total int
	var domain string
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Build a learning plan from a quiz result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(rt *stack) any {
				return rt.svc.TutorPlan(cmd.Context(), score, total, domain)
			})
		},
	}
	cmd.Flags().IntVar(&score, "score", 0, "correct answers")
	cmd.Flags().IntVar(&total, "total", 5, "questions asked")
	cmd.Flags().StringVar(&domain, "domain", "", "quiz domain, e.g. Frontend")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a provider is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(rt *stack) any {
				return rt.svc.Status()
			})
		},
	}
}

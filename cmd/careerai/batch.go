package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arpita1049/Prashikshan-final/internal/app"
)

func newBatchResumeCmd(c *cli) *cobra.Command {
	var (
		inputPath   string
		outputPath  string
		workers     int
		rateLimit   float64
		itemTimeout time.Duration
		failFast    bool
	)
	cmd := &cobra.Command{
		Use:   "batch-resume",
		Short: "Critique every resume in a CSV file",
		Long: `Reads a CSV with a "resume" column (and an optional "id" column) and writes one
analysis row per input: id,score,strengths,improvements,outcome,error_message,status,error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.build(cmd.Context(), prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer rt.close()

			return app.RunBatchResume(cmd.Context(), inputPath, outputPath, rt.svc, app.Options{
				Workers:      workers,
				RateLimitRPS: rateLimit,
				ItemTimeout:  itemTimeout,
				FailFast:     failFast,
				Logger:       c.logger,
			})
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "input CSV file path")
	cmd.Flags().StringVar(&outputPath, "output", "", "output CSV file path")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent analyses")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit-rps", 0, "row start rate limit (RPS), 0 disables")
	cmd.Flags().DurationVar(&itemTimeout, "item-timeout", 0, "per-row deadline including retries, 0 disables")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop on the first invalid row")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

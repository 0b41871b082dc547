// Package app wires the career service into batch jobs.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arpita1049/Prashikshan-final/internal/career"
	"github.com/arpita1049/Prashikshan-final/internal/util"
	"github.com/arpita1049/Prashikshan-final/internal/worker"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

var errEmptyResume = errors.New("empty resume text")

// Analyzer critiques a resume. *career.Service implements it.
type Analyzer interface {
	AnalyzeResume(ctx context.Context, resumeText string) career.ResumeAnalysis
}

type Options struct {
	Workers      int
	RateLimitRPS float64
	// ItemTimeout bounds one row, retries included. <=0 disables it.
	ItemTimeout time.Duration
	FailFast    bool
	Logger      *slog.Logger
}

// RunBatchResume reads a local input CSV of resumes and writes a local output CSV of
// analysis rows.
func RunBatchResume(ctx context.Context, inputPath, outputPath string, analyzer Analyzer, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("run", uuid.NewString())
	runStart := time.Now()

	inF, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = inF.Close()
	}()

	inputs, err := ReadResumesCSV(inF)
	if err != nil {
		return err
	}
	logger.Info("batch run start",
		"input", inputPath,
		"rows", len(inputs),
		"workers", opts.Workers,
		"rate_limit_rps", opts.RateLimitRPS,
		"fail_fast", opts.FailFast,
	)

	rows, err := AnalyzeResumes(ctx, inputs, analyzer, opts)
	if err != nil {
		return err
	}

	outF, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = outF.Close()
	}()

	if err := WriteCSV(outF, rows); err != nil {
		return err
	}
	if err := outF.Close(); err != nil {
		return err
	}

	okRows, errorRows := countStatuses(rows)
	logger.Info("batch run complete",
		"output", outputPath,
		"ok", okRows,
		"error", errorRows,
		"duration", time.Since(runStart).Round(time.Millisecond),
	)
	return nil
}

// AnalyzeResumes runs the analyzer over all inputs and returns rows in input order.
//
// Invalid rows are recorded per-row and do not fail the run unless FailFast is set.
func AnalyzeResumes(ctx context.Context, inputs []ResumeInput, analyzer Analyzer, opts Options) ([]Row, error) {
	policy := worker.FailurePolicyPartialOutput
	if opts.FailFast {
		policy = worker.FailurePolicyFailFast
	}

	analyze := func(ctx context.Context, in ResumeInput) (career.ResumeAnalysis, error) {
		if strings.TrimSpace(in.Text) == "" {
			return career.ResumeAnalysis{}, errEmptyResume
		}
		return analyzer.AnalyzeResume(ctx, in.Text), nil
	}

	out, err := worker.Run(ctx, inputs, analyze, worker.Options{
		Workers:       opts.Workers,
		RateLimitRPS:  opts.RateLimitRPS,
		ItemTimeout:   opts.ItemTimeout,
		FailurePolicy: policy,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(out))
	for _, item := range out {
		if item.Err != nil {
			rows = append(rows, Row{
				ID:     item.Input.ID,
				Status: statusError,
				Error:  util.RedactSecrets(item.Err.Error()),
			})
			continue
		}
		a := item.Output
		rows = append(rows, Row{
			ID:           item.Input.ID,
			Score:        a.Score,
			Strengths:    jsonArrayOrEmpty(a.Strengths),
			Improvements: jsonArrayOrEmpty(a.Improvements),
			Outcome:      string(outcomeOf(a.Provenance)),
			ErrorMessage: a.ErrorMessage,
			Status:       statusOK,
		})
	}
	return rows, nil
}

func outcomeOf(p career.Provenance) career.Outcome {
	switch {
	case p.IsDemo:
		return career.OutcomeDemo
	case p.IsFallback:
		return career.OutcomeFallback
	case p.FromCache:
		return career.OutcomeCache
	default:
		return career.OutcomeLive
	}
}

func jsonArrayOrEmpty(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return ""
	}
	return string(b)
}

func countStatuses(rows []Row) (ok int, failed int) {
	for _, r := range rows {
		if r.Status == statusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

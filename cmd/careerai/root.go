package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arpita1049/Prashikshan-final/internal/cache"
	"github.com/arpita1049/Prashikshan-final/internal/career"
	"github.com/arpita1049/Prashikshan-final/internal/config"
	"github.com/arpita1049/Prashikshan-final/internal/metrics"
	"github.com/arpita1049/Prashikshan-final/internal/resilience"
	"github.com/arpita1049/Prashikshan-final/internal/version"
)

// cli holds state shared by subcommands after the root pre-run.
type cli struct {
	cfgPath string
	debug   bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "careerai",
		Short: "Resilient AI features for the career app",
		Long: `careerai serves chatbot replies, resume critiques, interview feedback and tutor plans
backed by a generative AI provider. Provider failures degrade to fixed fallback payloads.
Without an API key every command runs in demo mode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "YAML config file (optional)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newChatCmd(c),
		newResumeCmd(c),
		newInterviewCmd(c),
		newTutorCmd(c),
		newStatusCmd(c),
		newBatchResumeCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup(stderr io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, _ := cfg.Logging.SlogLevel()
	if c.debug {
		level = slog.LevelDebug
	}
	c.cfg = cfg
	c.logger = slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
	return nil
}

// stack is a fully wired career service and the resources it owns.
type stack struct {
	svc   *career.Service
	store cache.Store
	close func()
}

func (c *cli) build(ctx context.Context, reg prometheus.Registerer) (*stack, error) {
	m := metrics.New(reg)

	p, err := c.cfg.BuildProvider(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		c.logger.Warn("no API key configured, running in demo mode")
	}

	orch, err := resilience.New(c.cfg.OrchestratorOptions(c.logger, m))
	if err != nil {
		return nil, err
	}

	store, err := c.cfg.BuildCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	closeFn := func() {}
	if r, ok := store.(*cache.Redis); ok {
		closeFn = func() { _ = r.Close() }
	}

	svc, err := career.New(career.Options{
		Provider:     p,
		Model:        c.cfg.Provider.Model,
		Cache:        store,
		Orchestrator: orch,
		DemoDelays:   c.cfg.Demo.Delays,
		Recorder:     m,
		Logger:       c.logger,
	})
	if err != nil {
		closeFn()
		return nil, err
	}
	return &stack{svc: svc, store: store, close: closeFn}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "careerai %s\n", version.Current)
		},
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/arpita1049/Prashikshan-final/internal/cache"
	"github.com/arpita1049/Prashikshan-final/internal/httpapi"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt, err := c.build(ctx, reg)
	if err != nil {
		return err
	}
	defer rt.close()

	if mem, ok := rt.store.(*cache.Memory); ok && c.cfg.Cache.SweepInterval > 0 {
		go mem.RunSweeper(ctx, c.cfg.Cache.SweepInterval)
	}

	h := httpapi.Handler(rt.svc, httpapi.Options{Logger: c.logger, Gatherer: reg})
	srv := httpapi.NewServer(c.cfg.Server.Addr, h, c.cfg.RequestBudget())

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("http server listening",
			"addr", srv.Addr,
			"provider", c.cfg.Provider.Name,
			"demo", !c.cfg.HasCredential(),
			"cache", c.cfg.Cache.Backend,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

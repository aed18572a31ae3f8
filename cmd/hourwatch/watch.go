package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joshsymonds/hourwatch/internal/metrics"
)

func newWatchCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for recent unread mail every interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cmd, *cfgPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.MetricsAddr != "" {
				stop, err := a.startMetrics(a.cfg.MetricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}
			return a.watch(ctx, a.cfg.Interval, func(ctx context.Context) error {
				return a.poll(ctx, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().Duration("interval", 5*time.Minute, "time between polls")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus /metrics on this address (e.g. :9090)")
	return cmd
}

// watch calls tick immediately and then once per interval. Polls never
// overlap; a slow poll delays the next one.
func (a *app) watch(ctx context.Context, interval time.Duration, tick func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
loop:
	for {
		if err := tick(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
	}
	a.logger.Info("watch stopped", slog.Int("processed", a.service.Processed()))
	return nil
}

func (a *app) startMetrics(addr string) (func(), error) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}
	a.service.Recorder = rec

	srv := metrics.NewServer(addr, reg)
	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	a.logger.Info("serving metrics", slog.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metrics.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics shutdown failed", "error", err)
		}
	}, nil
}

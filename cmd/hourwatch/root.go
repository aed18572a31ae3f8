package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joshsymonds/hourwatch/internal/config"
	"github.com/joshsymonds/hourwatch/internal/extract"
	"github.com/joshsymonds/hourwatch/internal/fetch"
	"github.com/joshsymonds/hourwatch/internal/gmail"
	"github.com/joshsymonds/hourwatch/internal/rate"
	"github.com/joshsymonds/hourwatch/internal/report"
	"github.com/joshsymonds/hourwatch/internal/runtime"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "hourwatch",
		Short: "Summarize unread Gmail received in the last hour",
		Long: `hourwatch authenticates with a Google service account (read-only scope),
lists unread messages newer than one hour and prints a short summary of each.

Settings come from --config (YAML), HOURWATCH_* environment variables and
flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().String("credentials-file", "", "service account key JSON")
	root.PersistentFlags().String("subject", "", "mailbox to impersonate (domain-wide delegation)")
	root.PersistentFlags().Int("max-results", gmail.DefaultMaxResults, "messages per fetch (<=500)")
	root.PersistentFlags().Int("rps", 4, "max Gmail requests per second (0 disables)")
	root.PersistentFlags().String("format", config.FormatText, "output format: text or json")
	root.PersistentFlags().String("json-out", "", "also write JSON to this relative path")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	root.AddCommand(newFetchCmd(&cfgPath))
	root.AddCommand(newWatchCmd(&cfgPath))
	return root
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *fetch.Service
	bucket  *rate.TokenBucket
}

func newApp(ctx context.Context, cmd *cobra.Command, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := runtime.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := runtime.NewLogger(level)

	creds, err := runtime.ReadCredentials(cfg.CredentialsFile, cfg.Subject)
	if err != nil {
		return nil, err
	}
	client, err := runtime.NewGmailClient(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	var limiter rate.Limiter
	if cfg.RPS > 0 {
		a.bucket = rate.NewTokenBucket(cfg.RPS)
		limiter = a.bucket
	}
	a.service = fetch.NewService(client, limiter, logger)
	return a, nil
}

func (a *app) close() {
	if a.bucket != nil {
		a.bucket.Stop()
	}
}

// poll runs one fetch and renders it.
func (a *app) poll(ctx context.Context, out io.Writer) error {
	summaries := a.service.ListRecentUnread(ctx, a.cfg.MaxResults)
	return a.render(summaries, out)
}

func (a *app) render(summaries []extract.Summary, out io.Writer) error {
	var err error
	switch a.cfg.Format {
	case config.FormatJSON:
		err = report.PrintJSON(summaries, out)
	default:
		err = report.PrintHuman(summaries, a.service.Processed(), out)
	}
	if err != nil {
		return err
	}
	if a.cfg.JSONOut == "" {
		return nil
	}
	if writeErr := report.WriteJSON(summaries, a.cfg.JSONOut); writeErr != nil {
		return fmt.Errorf("write json: %w", writeErr)
	}
	return nil
}

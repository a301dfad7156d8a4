package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/upsight-lab/copilot/pkg/cli/config"
	httpctrl "github.com/upsight-lab/copilot/pkg/controller/http"
	"github.com/upsight-lab/copilot/pkg/usecase"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var summarizeEvery int64
	var cacheTTL time.Duration
	var turnTimeout time.Duration

	var repoCfg config.Repository
	var llmCfg config.LLM
	var retrievalCfg config.Retrieval
	var analyticsCfg config.Analytics
	var toneCfg config.Tone

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COPILOT_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "summarize-every",
			Usage:       "Number of conversation turns per long-term summary",
			Value:       10,
			Sources:     cli.EnvVars("COPILOT_SUMMARIZE_EVERY"),
			Destination: &summarizeEvery,
		},
		&cli.DurationFlag{
			Name:        "dashboard-cache-ttl",
			Usage:       "Freshness window of the cached dashboard summary",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("COPILOT_DASHBOARD_CACHE_TTL"),
			Destination: &cacheTTL,
		},
		&cli.DurationFlag{
			Name:        "turn-timeout",
			Usage:       "Deadline for one chat turn",
			Value:       60 * time.Second,
			Sources:     cli.EnvVars("COPILOT_TURN_TIMEOUT"),
			Destination: &turnTimeout,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, retrievalCfg.Flags()...)
	flags = append(flags, analyticsCfg.Flags()...)
	flags = append(flags, toneCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			chain, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure model providers")
			}

			tones, err := toneCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tone presets")
			}

			uc := usecase.New(repo, chain,
				usecase.WithRetrieval(retrievalCfg.Configure()),
				usecase.WithAnalytics(analyticsCfg.Configure()),
				usecase.WithToneConfig(tones),
				usecase.WithSummarizeEvery(int(summarizeEvery)),
				usecase.WithCacheTTL(cacheTTL),
				usecase.WithTurnTimeout(turnTimeout),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
			}

			return nil
		},
	}
}

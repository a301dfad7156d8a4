package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/upsight-lab/copilot/pkg/cli/config"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/usecase"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
	"github.com/upsight-lab/copilot/pkg/utils/safe"
)

// cmdChat runs a single conversational turn from the terminal. Useful
// for trying prompts and tone presets without standing up the server.
func cmdChat() *cli.Command {
	var owner string
	var message string
	var tone string

	var repoCfg config.Repository
	var llmCfg config.LLM
	var retrievalCfg config.Retrieval
	var analyticsCfg config.Analytics
	var toneCfg config.Tone

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner ID of the conversation",
			Required:    true,
			Sources:     cli.EnvVars("COPILOT_OWNER"),
			Destination: &owner,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "User message for this turn",
			Required:    true,
			Destination: &message,
		},
		&cli.StringFlag{
			Name:        "tone",
			Usage:       "Tone preset ID or free-form instruction",
			Destination: &tone,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, retrievalCfg.Flags()...)
	flags = append(flags, analyticsCfg.Flags()...)
	flags = append(flags, toneCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Run a single chat turn and print the reply",
		Flags: flags,
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
			)

			reply, err := uc.Chat(ctx, &usecase.ChatInput{
				OwnerID: types.OwnerID(owner),
				Message: message,
				Tone:    tone,
			})
			if err != nil {
				return err
			}

			fmt.Println(reply.DisplayText)
			if reply.Action != nil {
				enc := json.NewEncoder(os.Stderr)
				enc.SetIndent("", "  ")
				safe.Write(ctx, os.Stderr, []byte("action: "))
				if err := enc.Encode(reply.Action); err != nil {
					return goerr.Wrap(err, "failed to render action")
				}
			}

			return nil
		},
	}
}

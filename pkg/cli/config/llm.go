package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"

	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

// LLM holds CLI flags for the model provider chain. Providers are tried
// in a fixed priority order: OpenAI, then Gemini, then the offline stub.
// The composition is decided once here from available credentials; a
// provider without credentials is simply not in the chain.
type LLM struct {
	openaiAPIKey   string
	geminiProject  string
	geminiLocation string
	disableStub    bool
}

// Flags returns CLI flags for LLM provider configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key (primary provider)",
			Sources:     cli.EnvVars("COPILOT_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API (secondary provider)",
			Sources:     cli.EnvVars("COPILOT_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("COPILOT_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.BoolFlag{
			Name:        "disable-stub",
			Usage:       "Remove the offline stub from the provider chain (requires at least one real provider)",
			Sources:     cli.EnvVars("COPILOT_DISABLE_STUB"),
			Destination: &l.disableStub,
		},
	}
}

// Configure builds the provider chain from the configured credentials
func (l *LLM) Configure(ctx context.Context) (*llm.Chain, error) {
	var clients []llm.Client

	if l.openaiAPIKey != "" {
		client, err := openai.New(ctx, l.openaiAPIKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		clients = append(clients, llm.NewGollemClient("openai", client))
	}

	if l.geminiProject != "" {
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client",
				goerr.V("project", l.geminiProject),
			)
		}
		clients = append(clients, llm.NewGollemClient("gemini", client))
	}

	if !l.disableStub {
		clients = append(clients, llm.NewStub())
	}
	if len(clients) == 0 {
		return nil, goerr.New("no model provider configured: set credentials or keep the stub enabled")
	}

	chain, err := llm.NewChain(clients)
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Model provider chain configured", "providers", chain.Providers())
	return chain, nil
}

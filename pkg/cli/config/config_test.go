package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/cli/config"
	"github.com/upsight-lab/copilot/pkg/llm"
)

func TestParseToneConfig(t *testing.T) {
	t.Run("valid presets", func(t *testing.T) {
		cfg, err := config.ParseToneConfig([]byte(`
default_tone = "concise"

[[tone]]
id = "concise"
name = "Concise"
instruction = "Short, direct answers without filler."

[[tone]]
id = "friendly"
name = "Friendly"
instruction = "Warm and encouraging, first-name basis."
`))
		gt.NoError(t, err).Required()

		gt.Equal(t, len(cfg.Presets), 2)
		gt.Equal(t, cfg.Default, "concise")
		gt.Equal(t, cfg.Resolve("friendly"), "Warm and encouraging, first-name basis.")
		gt.Equal(t, cfg.Resolve(""), "Short, direct answers without filler.")
		gt.Equal(t, cfg.Resolve("like a poet"), "like a poet")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := config.ParseToneConfig([]byte(`
[[tone]]
instruction = "text"
`))
		gt.Error(t, err)
	})

	t.Run("missing instruction", func(t *testing.T) {
		_, err := config.ParseToneConfig([]byte(`
[[tone]]
id = "x"
`))
		gt.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := config.ParseToneConfig([]byte(`
[[tone]]
id = "x"
instruction = "a"

[[tone]]
id = "x"
instruction = "b"
`))
		gt.Error(t, err)
	})

	t.Run("default pointing nowhere", func(t *testing.T) {
		_, err := config.ParseToneConfig([]byte(`
default_tone = "ghost"

[[tone]]
id = "x"
instruction = "a"
`))
		gt.Error(t, err)
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.ParseToneConfig([]byte(`[[tone`))
		gt.Error(t, err)
	})
}

func TestLLMChainComposition(t *testing.T) {
	ctx := context.Background()

	t.Run("no credentials yields stub-only chain", func(t *testing.T) {
		var cfg config.LLM
		chain, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Equal(t, chain.Providers(), []string{llm.StubName})
	})
}

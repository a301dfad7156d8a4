package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	modelconfig "github.com/upsight-lab/copilot/pkg/domain/model/config"
)

// Tone holds CLI flags for the tone preset configuration file
type Tone struct {
	path string
}

// Flags returns CLI flags for tone configuration
func (t *Tone) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tone-config",
			Usage:       "Path to a TOML file with tone presets (built-in neutral tone when empty)",
			Sources:     cli.EnvVars("COPILOT_TONE_CONFIG"),
			Destination: &t.path,
		},
	}
}

type tonePresetFile struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Instruction string `toml:"instruction"`
}

type toneFile struct {
	DefaultTone string           `toml:"default_tone"`
	Tones       []tonePresetFile `toml:"tone"`
}

// Configure loads and validates the tone presets. Returns nil when no
// config file is given; the use case layer falls back to the built-in
// neutral tone.
func (t *Tone) Configure() (*modelconfig.ToneConfig, error) {
	if t.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tone config", goerr.V("path", t.path))
	}

	return ParseToneConfig(data)
}

// ParseToneConfig decodes and validates TOML tone presets
func ParseToneConfig(data []byte) (*modelconfig.ToneConfig, error) {
	var file toneFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tone config")
	}

	cfg := &modelconfig.ToneConfig{
		Default: file.DefaultTone,
		Presets: make([]modelconfig.TonePreset, 0, len(file.Tones)),
	}

	seen := make(map[string]bool, len(file.Tones))
	for _, preset := range file.Tones {
		if preset.ID == "" {
			return nil, goerr.New("tone preset is missing an id")
		}
		if preset.Instruction == "" {
			return nil, goerr.New("tone preset is missing an instruction", goerr.V("id", preset.ID))
		}
		if seen[preset.ID] {
			return nil, goerr.New("duplicate tone preset id", goerr.V("id", preset.ID))
		}
		seen[preset.ID] = true

		cfg.Presets = append(cfg.Presets, modelconfig.TonePreset{
			ID:          preset.ID,
			Name:        preset.Name,
			Instruction: preset.Instruction,
		})
	}

	if file.DefaultTone != "" && !seen[file.DefaultTone] {
		return nil, goerr.New("default_tone does not match any preset", goerr.V("default_tone", file.DefaultTone))
	}

	return cfg, nil
}

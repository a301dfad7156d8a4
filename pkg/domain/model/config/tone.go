package config

// TonePreset is a named assistant persona. Tone is an orthogonal
// instruction layered on top of the assembled context, never mixed
// into retrieved content.
type TonePreset struct {
	ID          string
	Name        string
	Instruction string
}

// DefaultToneInstruction is used when no preset matches and the request
// carries no tone hint.
const DefaultToneInstruction = "Neutral professional"

// ToneConfig holds the tone presets loaded from the application config
type ToneConfig struct {
	Presets []TonePreset
	Default string
}

// Resolve maps a request tone hint to an instruction. A hint matching a
// preset ID returns the preset instruction; a free-form hint is used
// verbatim; an empty hint falls back to the configured default preset
// or the built-in neutral tone.
func (c *ToneConfig) Resolve(hint string) string {
	if c != nil {
		if hint != "" {
			for _, preset := range c.Presets {
				if preset.ID == hint {
					return preset.Instruction
				}
			}
			return hint
		}
		for _, preset := range c.Presets {
			if preset.ID == c.Default {
				return preset.Instruction
			}
		}
	}
	if hint != "" {
		return hint
	}
	return DefaultToneInstruction
}

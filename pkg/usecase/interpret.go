package usecase

import (
	"encoding/json"
	"strings"

	"github.com/upsight-lab/copilot/pkg/domain/model"
)

// emptyReplyText is shown when the model produced no usable output at
// all. The user always gets something to read.
const emptyReplyText = "I could not put together a response this time. Please try again."

type modelReply struct {
	SpeakableResponse string        `json:"speakable_response"`
	Action            *model.Action `json:"action,omitempty"`
}

// interpretModelOutput normalizes raw model output into a Reply. A well
// formed JSON object yields its speakable text plus the optional action
// passthrough; anything else degrades to the raw text verbatim. The
// interpreter never fails a turn over a malformed payload.
func interpretModelOutput(raw string) *model.Reply {
	trimmed := stripCodeFence(strings.TrimSpace(raw))

	var parsed modelReply
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		if text := strings.TrimSpace(parsed.SpeakableResponse); text != "" {
			reply := &model.Reply{DisplayText: text}
			if parsed.Action != nil && parsed.Action.Type != "" {
				reply.Action = parsed.Action
			}
			return reply
		}
	}

	if trimmed == "" {
		return &model.Reply{DisplayText: emptyReplyText}
	}
	return &model.Reply{DisplayText: trimmed}
}

// stripCodeFence unwraps a markdown fenced block. Some providers wrap
// JSON output in ```json fences even when asked for bare JSON.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

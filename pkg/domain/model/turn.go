package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Action is an opaque directive returned by the model. The engine never
// executes it; execution is delegated to the action dispatch collaborator.
type Action struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ConversationTurn is one user/assistant exchange. Turns are not stored
// as a separate entity: each short_term MemoryRecord holds one encoded
// turn, and the recent conversation is reconstructed from the most
// recent short_term records of an owner.
type ConversationTurn struct {
	UserMessage      string  `json:"user"`
	AssistantMessage string  `json:"assistant"`
	Action           *Action `json:"action,omitempty"`
}

// Encode serializes the turn for storage as short_term record content.
func (t *ConversationTurn) Encode() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode conversation turn")
	}
	return string(data), nil
}

// DecodeTurn reconstructs a turn from short_term record content. Content
// that predates the structured encoding is kept as a bare user message so
// old rows still contribute to the context window.
func DecodeTurn(content string) ConversationTurn {
	var turn ConversationTurn
	if err := json.Unmarshal([]byte(content), &turn); err == nil && (turn.UserMessage != "" || turn.AssistantMessage != "") {
		return turn
	}
	return ConversationTurn{UserMessage: content}
}

// Citation points at the retrieved document chunk that grounded a reply
type Citation struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
}

// Reply is the normalized outcome of one chat turn
type Reply struct {
	DisplayText string
	Action      *Action
	Citations   []Citation
	Provider    string
}

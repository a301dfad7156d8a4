package llm_test

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/llm"
)

func TestStub_ChatCompletion(t *testing.T) {
	ctx := context.Background()
	stub := llm.NewStub()

	t.Run("JSON mode returns parseable schema-conformant output", func(t *testing.T) {
		raw, err := stub.ChatCompletion(ctx, &llm.Request{
			UserMessage:  "What's my revenue?",
			ResponseJSON: true,
		})
		gt.NoError(t, err).Required()

		var parsed struct {
			SpeakableResponse string `json:"speakable_response"`
		}
		gt.NoError(t, json.Unmarshal([]byte(raw), &parsed))
		gt.True(t, parsed.SpeakableResponse != "")
	})

	t.Run("long multibyte message truncates on rune boundary", func(t *testing.T) {
		raw, err := stub.ChatCompletion(ctx, &llm.Request{
			UserMessage: strings.Repeat("売上", 100),
		})
		gt.NoError(t, err).Required()
		gt.True(t, utf8.ValidString(raw))
		gt.True(t, strings.Contains(raw, "…"))
	})

	t.Run("text mode returns plain non-empty text", func(t *testing.T) {
		raw, err := stub.ChatCompletion(ctx, &llm.Request{UserMessage: "summarize"})
		gt.NoError(t, err).Required()
		gt.True(t, raw != "")
		gt.False(t, json.Valid([]byte(raw)))
	})
}

func TestStub_Embedding(t *testing.T) {
	ctx := context.Background()
	stub := llm.NewStub()

	first, err := stub.CreateEmbedding(ctx, 768, []string{"hello world"})
	gt.NoError(t, err).Required()
	second, err := stub.CreateEmbedding(ctx, 768, []string{"hello world"})
	gt.NoError(t, err).Required()

	gt.Equal(t, first, second)

	var norm float64
	for _, v := range first[0] {
		norm += v * v
	}
	if diff := math.Abs(math.Sqrt(norm) - 1); diff > 1e-9 {
		t.Errorf("expected unit norm vector, got norm diff %f", diff)
	}

	other, err := stub.CreateEmbedding(ctx, 768, []string{"another text"})
	gt.NoError(t, err).Required()
	gt.NotEqual(t, first[0], other[0])

	_, err = stub.CreateEmbedding(ctx, 0, []string{"x"})
	gt.Error(t, err)
}

package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// StubName is the provider name reported by the local stub
const StubName = "local-stub"

// stubClient is the deterministic local provider at the end of the
// chain. It never fails and returns schema-conformant canned output so
// downstream parsing runs identically without live credentials
// (deterministic tests, offline demos).
type stubClient struct{}

// NewStub returns the deterministic local provider
func NewStub() Client {
	return &stubClient{}
}

func (c *stubClient) Name() string {
	return StubName
}

func (c *stubClient) ChatCompletion(ctx context.Context, req *Request) (string, error) {
	message := req.UserMessage
	if runes := []rune(message); len(runes) > 140 {
		message = string(runes[:140]) + "…"
	}
	text := fmt.Sprintf("I'm running without a live model provider, so here is a canned reply. I received: %q. Connect a provider to get grounded answers.", message)

	if !req.ResponseJSON {
		return text, nil
	}

	reply := map[string]any{"speakable_response": text}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode stub reply")
	}
	return string(data), nil
}

// CreateEmbedding returns a deterministic unit-norm vector seeded from
// a hash of the input text, so similarity search stays stable across
// runs.
func (c *stubClient) CreateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if dimension <= 0 {
		return nil, goerr.Wrap(ErrInvalidRequest, "embedding dimension must be positive")
	}

	result := make([][]float64, len(input))
	for i, text := range input {
		result[i] = hashEmbedding(text, dimension)
	}
	return result, nil
}

func hashEmbedding(text string, dimension int) []float64 {
	vec := make([]float64, dimension)
	digest := sha256.Sum256([]byte(text))

	var norm float64
	for i := 0; i < dimension; i++ {
		// each digest yields four uint64 lanes, rehash when consumed
		lane := i % 4
		if lane == 0 && i > 0 {
			digest = sha256.Sum256(digest[:])
		}
		bits := binary.BigEndian.Uint64(digest[lane*8 : lane*8+8])
		// map to [-1, 1]
		v := float64(int64(bits)) / math.MaxInt64
		vec[i] = v
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

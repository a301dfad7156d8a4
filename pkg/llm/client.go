package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Request is the uniform chat-completion request shape. Provider
// specific translation happens entirely inside this package; no other
// component may depend on a provider's wire format.
type Request struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float64

	// ResponseJSON asks the provider for structured JSON output, with
	// ResponseSchema optionally constraining its shape.
	ResponseJSON   bool
	ResponseSchema *gollem.Parameter
}

// Validate checks the request before any provider is tried
func (r *Request) Validate() error {
	if strings.TrimSpace(r.UserMessage) == "" {
		return goerr.Wrap(ErrInvalidRequest, "user message is required")
	}
	return nil
}

// Response is the uniform chat-completion response shape
type Response struct {
	Text     string
	Provider string
}

// Client is one model provider in the chain
type Client interface {
	Name() string
	ChatCompletion(ctx context.Context, req *Request) (string, error)
	CreateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// gollemClient adapts a gollem.LLMClient into a chain provider
type gollemClient struct {
	name   string
	client gollem.LLMClient
}

// NewGollemClient wraps a gollem LLM client (Gemini, OpenAI, ...) as a
// chain provider.
func NewGollemClient(name string, client gollem.LLMClient) Client {
	return &gollemClient{name: name, client: client}
}

func (c *gollemClient) Name() string {
	return c.name
}

func (c *gollemClient) ChatCompletion(ctx context.Context, req *Request) (string, error) {
	// Generation parameters (max tokens, temperature) are fixed per
	// provider client at construction time; gollem sessions do not take
	// per-call overrides.
	opts := []gollem.SessionOption{}
	if req.SystemPrompt != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(req.SystemPrompt))
	}
	if req.ResponseJSON {
		opts = append(opts, gollem.WithSessionContentType(gollem.ContentTypeJSON))
		if req.ResponseSchema != nil {
			opts = append(opts, gollem.WithSessionResponseSchema(req.ResponseSchema))
		}
	}

	session, err := c.client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.V("provider", c.name))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(req.UserMessage))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("provider", c.name))
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("provider returned empty response", goerr.V("provider", c.name))
	}

	return strings.Join(resp.Texts, "\n"), nil
}

func (c *gollemClient) CreateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	embeddings, err := c.client.GenerateEmbedding(ctx, dimension, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding", goerr.V("provider", c.name))
	}
	return embeddings, nil
}

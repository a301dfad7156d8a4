package llm

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

const (
	defaultMaxRetries = 4
	defaultBaseDelay  = 500 * time.Millisecond
)

// Chain tries providers in a fixed priority order. Each provider call
// is wrapped in a retry loop: transient failures are retried with
// exponential backoff (baseDelay, doubling per attempt, up to
// maxRetries additional attempts); any other failure falls through to
// the next provider immediately. When the last provider is exhausted
// the call fails with ErrProviderExhausted.
//
// The chain composition is a static startup decision resolved from
// available credentials, not a per-call load balancing choice.
type Chain struct {
	clients    []Client
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Chain)

// WithMaxRetries overrides the retry budget per provider
func WithMaxRetries(n int) Option {
	return func(c *Chain) {
		c.maxRetries = n
	}
}

// WithBaseDelay overrides the first backoff delay
func WithBaseDelay(d time.Duration) Option {
	return func(c *Chain) {
		c.baseDelay = d
	}
}

// WithSleep replaces the backoff sleeper, used by tests to observe
// delays without waiting.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Chain) {
		c.sleep = sleep
	}
}

func NewChain(clients []Client, opts ...Option) (*Chain, error) {
	if len(clients) == 0 {
		return nil, goerr.New("at least one provider is required")
	}

	c := &Chain{
		clients:    clients,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Providers returns the provider names in priority order
func (c *Chain) Providers() []string {
	names := make([]string, len(c.clients))
	for i, client := range c.clients {
		names[i] = client.Name()
	}
	return names
}

// ChatCompletion runs the request through the provider chain
func (c *Chain) ChatCompletion(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var text string
	provider, err := c.do(ctx, "chat_completion", func(client Client) error {
		var callErr error
		text, callErr = client.ChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	return &Response{Text: text, Provider: provider}, nil
}

// CreateEmbedding runs the embedding request through the provider chain
func (c *Chain) CreateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if len(input) == 0 {
		return nil, goerr.Wrap(ErrInvalidRequest, "embedding input is required")
	}

	var embeddings [][]float64
	if _, err := c.do(ctx, "create_embedding", func(client Client) error {
		var callErr error
		embeddings, callErr = client.CreateEmbedding(ctx, dimension, input)
		return callErr
	}); err != nil {
		return nil, err
	}

	return embeddings, nil
}

// do executes fn against each provider in order with per-provider
// retries, returning the name of the provider that succeeded.
func (c *Chain) do(ctx context.Context, op string, fn func(client Client) error) (string, error) {
	logger := logging.From(ctx)

	var lastErr error
	for _, client := range c.clients {
		delay := c.baseDelay
		for attempt := 0; ; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", goerr.Wrap(err, "model call aborted", goerr.V("op", op))
			}
			err := fn(client)
			if err == nil {
				return client.Name(), nil
			}
			lastErr = err

			if !isTransient(err) || attempt >= c.maxRetries {
				logger.Warn("model provider failed",
					"op", op,
					"provider", client.Name(),
					"attempts", attempt+1,
					"error", err.Error(),
				)
				break
			}

			logger.Warn("model call failed, retrying",
				"op", op,
				"provider", client.Name(),
				"attempt", attempt+1,
				"delay", delay,
				"error", err.Error(),
			)
			if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
				return "", goerr.Wrap(sleepErr, "canceled during retry backoff", goerr.V("op", op))
			}
			delay *= 2
		}
	}

	// A deadline expiring mid-call is a timeout, not provider exhaustion
	if err := ctx.Err(); err != nil {
		return "", goerr.Wrap(err, "model call aborted", goerr.V("op", op))
	}

	return "", goerr.Wrap(ErrProviderExhausted, "model call failed on every provider",
		goerr.V("op", op),
		goerr.V("providers", c.Providers()),
		goerr.V("last_error", lastErr.Error()),
	)
}

package usecase

import (
	"context"
	"time"

	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
	"github.com/upsight-lab/copilot/pkg/domain/model/config"
	"github.com/upsight-lab/copilot/pkg/llm"
)

const (
	defaultSummarizeEvery = 10
	defaultCacheTTL       = 24 * time.Hour
	defaultTurnTimeout    = 60 * time.Second

	// Per-collaborator budget inside one chat turn. Each context source
	// gets its own deadline so one slow collaborator cannot eat the turn.
	collaboratorTimeout = 3 * time.Second

	longTermLimit  = 3
	shortTermLimit = 8
	documentLimit  = 3
)

// ModelInvoker dispatches a chat completion to the model provider chain.
// Satisfied by llm.Chain.
type ModelInvoker interface {
	ChatCompletion(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

type UseCases struct {
	repo    interfaces.Repository
	invoker ModelInvoker

	// Collaborators are optional: a nil client behaves like an
	// unavailable service and degrades the turn instead of failing it.
	retrieval interfaces.RetrievalClient
	analytics interfaces.AnalyticsClient

	tones *config.ToneConfig

	summarizeEvery int
	cacheTTL       time.Duration
	turnTimeout    time.Duration
	now            func() time.Time
}

type Option func(*UseCases)

// WithRetrieval sets the document retrieval collaborator
func WithRetrieval(client interfaces.RetrievalClient) Option {
	return func(uc *UseCases) {
		uc.retrieval = client
	}
}

// WithAnalytics sets the analytics collaborator
func WithAnalytics(client interfaces.AnalyticsClient) Option {
	return func(uc *UseCases) {
		uc.analytics = client
	}
}

// WithToneConfig sets the tone presets
func WithToneConfig(cfg *config.ToneConfig) Option {
	return func(uc *UseCases) {
		uc.tones = cfg
	}
}

// WithSummarizeEvery overrides the summarization cadence (turns per
// long-term summary)
func WithSummarizeEvery(k int) Option {
	return func(uc *UseCases) {
		if k > 0 {
			uc.summarizeEvery = k
		}
	}
}

// WithCacheTTL overrides the dashboard summary freshness window
func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		if ttl > 0 {
			uc.cacheTTL = ttl
		}
	}
}

// WithTurnTimeout overrides the per-turn deadline
func WithTurnTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		if d > 0 {
			uc.turnTimeout = d
		}
	}
}

// WithClock replaces the time source, used by cache and cadence tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, invoker ModelInvoker, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		invoker:        invoker,
		summarizeEvery: defaultSummarizeEvery,
		cacheTTL:       defaultCacheTTL,
		turnTimeout:    defaultTurnTimeout,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

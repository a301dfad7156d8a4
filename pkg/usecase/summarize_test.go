package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/repository/memory"
	"github.com/upsight-lab/copilot/pkg/usecase"
)

func TestSummarizationCadence(t *testing.T) {
	ctx := context.Background()
	ownerID := types.OwnerID("owner-1")

	longTermCount := func(t *testing.T, repo *memory.Memory) int {
		t.Helper()
		count, err := repo.Memory().CountByKind(ctx, ownerID, types.MemoryKindLongTerm)
		gt.NoError(t, err).Required()
		return count
	}

	t.Run("below threshold does nothing", func(t *testing.T) {
		repo := memory.New()
		invoker := &fakeInvoker{}
		uc := usecase.New(repo, invoker)
		seedTurns(t, repo, ownerID, 9)

		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		gt.Equal(t, longTermCount(t, repo), 0)
		gt.Equal(t, invoker.callCount(), 0)
	})

	t.Run("threshold creates one summary", func(t *testing.T) {
		repo := memory.New()
		invoker := &fakeInvoker{
			fn: func(*llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: "Key insight about the shop", Provider: "fake"}, nil
			},
		}
		uc := usecase.New(repo, invoker)
		seedTurns(t, repo, ownerID, 10)

		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		gt.Equal(t, longTermCount(t, repo), 1)

		// one past the threshold is not a new cycle
		seedTurns(t, repo, ownerID, 1)
		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		gt.Equal(t, longTermCount(t, repo), 1)
	})

	t.Run("each multiple gets its own summary", func(t *testing.T) {
		repo := memory.New()
		invoker := &fakeInvoker{
			fn: func(*llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: "summary", Provider: "fake"}, nil
			},
		}
		uc := usecase.New(repo, invoker)

		seedTurns(t, repo, ownerID, 10)
		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		seedTurns(t, repo, ownerID, 10)
		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))

		gt.Equal(t, longTermCount(t, repo), 2)
	})

	t.Run("custom cadence", func(t *testing.T) {
		repo := memory.New()
		invoker := &fakeInvoker{
			fn: func(*llm.Request) (*llm.Response, error) {
				return &llm.Response{Text: "summary", Provider: "fake"}, nil
			},
		}
		uc := usecase.New(repo, invoker, usecase.WithSummarizeEvery(3))

		seedTurns(t, repo, ownerID, 3)
		gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		gt.Equal(t, longTermCount(t, repo), 1)
	})

	t.Run("model failure loses the cycle, not the data", func(t *testing.T) {
		repo := memory.New()
		invoker := &fakeInvoker{
			fn: func(*llm.Request) (*llm.Response, error) {
				return nil, llm.ErrProviderExhausted
			},
		}
		uc := usecase.New(repo, invoker)
		seedTurns(t, repo, ownerID, 10)

		gt.Error(t, usecase.MaybeSummarize(uc, ctx, ownerID))
		gt.Equal(t, longTermCount(t, repo), 0)

		count, err := repo.Memory().CountByKind(ctx, ownerID, types.MemoryKindShortTerm)
		gt.NoError(t, err).Required()
		gt.Equal(t, count, 10)
	})
}

func TestSummarizationTranscript(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	ownerID := types.OwnerID("owner-1")
	seedTurns(t, repo, ownerID, 10)

	var transcript string
	invoker := &fakeInvoker{
		fn: func(req *llm.Request) (*llm.Response, error) {
			transcript = req.UserMessage
			return &llm.Response{Text: "summary", Provider: "fake"}, nil
		},
	}
	uc := usecase.New(repo, invoker)
	gt.NoError(t, usecase.MaybeSummarize(uc, ctx, ownerID))

	// oldest first, both sides of each exchange
	first := strings.Index(transcript, "turn-01 question")
	last := strings.Index(transcript, "turn-10 answer")
	gt.True(t, first >= 0)
	gt.True(t, last > first)
}

func TestBuildTranscript(t *testing.T) {
	// repository order is newest first; the transcript must flip it
	records := []*model.MemoryRecord{
		{Content: `{"user": "second q", "assistant": "second a"}`},
		{Content: `{"user": "first q", "assistant": "first a"}`},
	}
	transcript := usecase.BuildTranscript(records)

	gt.True(t, strings.Index(transcript, "first q") < strings.Index(transcript, "second q"))
	gt.True(t, strings.HasPrefix(transcript, "User: first q"))
}

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/repository/memory"
	"github.com/upsight-lab/copilot/pkg/usecase"
)

type fakeInvoker struct {
	mu    sync.Mutex
	calls []*llm.Request
	fn    func(req *llm.Request) (*llm.Response, error)
}

func (f *fakeInvoker) ChatCompletion(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(req)
	}
	return &llm.Response{Text: `{"speakable_response": "ok"}`, Provider: "fake"}, nil
}

func (f *fakeInvoker) lastCall() *llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAnalytics struct {
	snapshot *model.KPISnapshot
	days     []*model.KPIDay
	err      error
}

func (f *fakeAnalytics) RecentKPIs(context.Context, types.OwnerID, int) (*model.KPISnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeAnalytics) DailyKPIs(context.Context, types.OwnerID, int) ([]*model.KPIDay, error) {
	return f.days, f.err
}

type fakeRetrieval struct {
	matches []*model.DocumentMatch
	err     error
}

func (f *fakeRetrieval) Search(context.Context, string, int) ([]*model.DocumentMatch, error) {
	return f.matches, f.err
}

func seedTurns(t *testing.T, repo *memory.Memory, ownerID types.OwnerID, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		turn := &model.ConversationTurn{
			UserMessage:      fmt.Sprintf("turn-%02d question", i),
			AssistantMessage: fmt.Sprintf("turn-%02d answer", i),
		}
		encoded, err := turn.Encode()
		gt.NoError(t, err).Required()
		_, err = repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
			Kind:    types.MemoryKindShortTerm,
			Content: encoded,
		})
		gt.NoError(t, err).Required()
	}
}

func TestChatPersistsTurn(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	invoker := &fakeInvoker{
		fn: func(*llm.Request) (*llm.Response, error) {
			return &llm.Response{
				Text:     `{"speakable_response": "Your revenue is up.", "action": {"type": "create_report", "parameters": {"period": "weekly"}}}`,
				Provider: "openai",
			}, nil
		},
	}
	uc := usecase.New(repo, invoker)

	reply, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "How are sales?"})
	gt.NoError(t, err).Required()

	gt.Equal(t, reply.DisplayText, "Your revenue is up.")
	gt.Equal(t, reply.Provider, "openai")
	gt.NotNil(t, reply.Action)
	gt.Equal(t, reply.Action.Type, "create_report")

	records, err := repo.Memory().ListRecent(ctx, "owner-1", types.MemoryKindShortTerm, 10)
	gt.NoError(t, err).Required()
	gt.Equal(t, len(records), 1)

	turn := model.DecodeTurn(records[0].Content)
	gt.Equal(t, turn.UserMessage, "How are sales?")
	gt.Equal(t, turn.AssistantMessage, "Your revenue is up.")
	gt.NotNil(t, turn.Action)
	gt.Equal(t, turn.Action.Type, "create_report")
}

func TestChatDegradedCollaborators(t *testing.T) {
	// every collaborator down: no analytics, retrieval failing, model
	// answering in plain text. The user still gets a reply.
	ctx := context.Background()
	repo := memory.New()
	invoker := &fakeInvoker{
		fn: func(*llm.Request) (*llm.Response, error) {
			return &llm.Response{Text: "Plain answer without JSON", Provider: "local-stub"}, nil
		},
	}
	uc := usecase.New(repo, invoker,
		usecase.WithRetrieval(&fakeRetrieval{err: fmt.Errorf("connection refused")}),
	)

	reply, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "anything there?"})
	gt.NoError(t, err).Required()
	gt.True(t, strings.TrimSpace(reply.DisplayText) != "")

	prompt := invoker.lastCall().SystemPrompt
	gt.True(t, strings.Contains(prompt, "Live business metrics are unavailable"))
	gt.True(t, strings.Contains(prompt, "Document retrieval is unavailable"))
}

func TestChatContextWindow(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	ownerID := types.OwnerID("owner-1")

	for i := 1; i <= 4; i++ {
		_, err := repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
			Kind:    types.MemoryKindLongTerm,
			Content: fmt.Sprintf("summary-%02d", i),
		})
		gt.NoError(t, err).Required()
	}
	seedTurns(t, repo, ownerID, 10)

	invoker := &fakeInvoker{}
	uc := usecase.New(repo, invoker,
		usecase.WithAnalytics(&fakeAnalytics{snapshot: &model.KPISnapshot{
			Revenue:      182450,
			Profit:       54100,
			NewCustomers: 412,
			Channels:     []model.ChannelRevenue{{Platform: "web", Revenue: 120000}},
		}}),
		usecase.WithRetrieval(&fakeRetrieval{matches: []*model.DocumentMatch{
			{DocumentID: "doc-a", Chunks: []model.PassageChunk{
				{ChunkIndex: 0, Content: "return policy is 30 days", Score: 0.4},
				{ChunkIndex: 2, Content: "refunds processed weekly", Score: 0.9},
			}},
			{DocumentID: "doc-b", Chunks: []model.PassageChunk{
				{ChunkIndex: 1, Content: "shipping is free over 50", Score: 0.7},
			}},
		}}),
	)

	reply, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: ownerID, Message: "What is our refund policy?"})
	gt.NoError(t, err).Required()

	prompt := invoker.lastCall().SystemPrompt

	// live metrics made it into the prompt
	gt.True(t, strings.Contains(prompt, "182450.00"))
	gt.True(t, strings.Contains(prompt, "Channel web"))

	// 3 of 4 long-term summaries, most recent first
	gt.True(t, strings.Contains(prompt, "summary-04"))
	gt.True(t, strings.Contains(prompt, "summary-02"))
	gt.False(t, strings.Contains(prompt, "summary-01"))

	// 8 of 10 turns, oldest two dropped
	gt.True(t, strings.Contains(prompt, "turn-03 question"))
	gt.True(t, strings.Contains(prompt, "turn-10 answer"))
	gt.False(t, strings.Contains(prompt, "turn-01"))
	gt.False(t, strings.Contains(prompt, "turn-02"))

	// retrieved chunks present
	gt.True(t, strings.Contains(prompt, "refunds processed weekly"))
	gt.True(t, strings.Contains(prompt, "shipping is free over 50"))

	// one citation per document, pointing at the top scored chunk
	gt.Equal(t, len(reply.Citations), 2)
	gt.Equal(t, reply.Citations[0], model.Citation{DocumentID: "doc-a", ChunkIndex: 2})
	gt.Equal(t, reply.Citations[1], model.Citation{DocumentID: "doc-b", ChunkIndex: 1})
}

func TestChatToneAndLanguage(t *testing.T) {
	ctx := context.Background()
	invoker := &fakeInvoker{}
	uc := usecase.New(memory.New(), invoker)

	_, err := uc.Chat(ctx, &usecase.ChatInput{
		OwnerID: "owner-1",
		Message: "hello",
		Tone:    "Answer like a pirate",
	})
	gt.NoError(t, err).Required()

	prompt := invoker.lastCall().SystemPrompt
	gt.True(t, strings.Contains(prompt, "Answer like a pirate"))
	gt.True(t, strings.Contains(prompt, "same language the user writes in"))
}

func TestChatInvalidInput(t *testing.T) {
	ctx := context.Background()
	invoker := &fakeInvoker{}
	uc := usecase.New(memory.New(), invoker)

	_, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "   "})
	gt.Error(t, err)

	_, err = uc.Chat(ctx, &usecase.ChatInput{OwnerID: "", Message: "hello"})
	gt.Error(t, err)

	gt.Equal(t, invoker.callCount(), 0)
}

func TestChatModelFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	invoker := &fakeInvoker{
		fn: func(*llm.Request) (*llm.Response, error) {
			return nil, llm.ErrProviderExhausted
		},
	}
	uc := usecase.New(repo, invoker)

	_, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "hello"})
	gt.Error(t, err)

	// a failed turn leaves no partial record behind
	count, err := repo.Memory().CountByKind(ctx, "owner-1", types.MemoryKindShortTerm)
	gt.NoError(t, err).Required()
	gt.Equal(t, count, 0)
}

func TestChatTurnTimeout(t *testing.T) {
	ctx := context.Background()
	chain, err := llm.NewChain([]llm.Client{llm.NewStub()})
	gt.NoError(t, err).Required()

	repo := memory.New()
	uc := usecase.New(repo, chain, usecase.WithTurnTimeout(time.Nanosecond))

	_, err = uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "hello"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, usecase.ErrTurnTimeout))

	count, err := repo.Memory().CountByKind(ctx, "owner-1", types.MemoryKindShortTerm)
	gt.NoError(t, err).Required()
	gt.Equal(t, count, 0)
}

// hangingClient blocks every model call until the context expires
type hangingClient struct{}

func (hangingClient) Name() string { return "hanging" }

func (hangingClient) ChatCompletion(ctx context.Context, req *llm.Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (hangingClient) CreateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestChatTimeoutDuringModelCall(t *testing.T) {
	// The deadline expires while the provider call is in flight; the
	// turn must report a timeout, not provider exhaustion.
	ctx := context.Background()
	chain, err := llm.NewChain([]llm.Client{hangingClient{}})
	gt.NoError(t, err).Required()

	repo := memory.New()
	uc := usecase.New(repo, chain, usecase.WithTurnTimeout(100*time.Millisecond))

	_, err = uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "hello"})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, usecase.ErrTurnTimeout))
	gt.False(t, errors.Is(err, llm.ErrProviderExhausted))
}

func TestChatWithStubChain(t *testing.T) {
	// end to end through the real provider chain with the offline stub
	ctx := context.Background()
	chain, err := llm.NewChain([]llm.Client{llm.NewStub()})
	gt.NoError(t, err).Required()

	uc := usecase.New(memory.New(), chain)

	reply, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: "owner-1", Message: "how is the shop doing?"})
	gt.NoError(t, err).Required()
	gt.True(t, strings.TrimSpace(reply.DisplayText) != "")
	gt.Equal(t, reply.Provider, llm.StubName)
}

func TestChatTriggersSummarization(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	ownerID := types.OwnerID("owner-1")
	seedTurns(t, repo, ownerID, 9)

	invoker := &fakeInvoker{
		fn: func(req *llm.Request) (*llm.Response, error) {
			if strings.Contains(req.SystemPrompt, "durable memory") {
				return &llm.Response{Text: "Owner cares about refund speed", Provider: "fake"}, nil
			}
			return &llm.Response{Text: `{"speakable_response": "done"}`, Provider: "fake"}, nil
		},
	}
	uc := usecase.New(repo, invoker)

	// the 10th turn crosses the cadence threshold
	_, err := uc.Chat(ctx, &usecase.ChatInput{OwnerID: ownerID, Message: "one more thing"})
	gt.NoError(t, err).Required()

	// summarization runs in the background after the turn returns
	deadline := time.Now().Add(2 * time.Second)
	for {
		count, err := repo.Memory().CountByKind(ctx, ownerID, types.MemoryKindLongTerm)
		gt.NoError(t, err).Required()
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("long-term summary was not created, count=%d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}

	latest, err := repo.Memory().Latest(ctx, ownerID, types.MemoryKindLongTerm)
	gt.NoError(t, err).Required()
	gt.Equal(t, latest.Content, "Owner cares about refund speed")
}

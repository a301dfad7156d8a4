package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/utils/async"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

//go:embed prompt/chat_system.md
var chatSystemPromptTmpl string

var chatSystemPrompt = template.Must(template.New("chat_system").Parse(chatSystemPromptTmpl))

// metricsWindowDays is the trailing window for the live KPI snapshot
const metricsWindowDays = 30

// ChatInput is one user request to the conversational engine
type ChatInput struct {
	OwnerID types.OwnerID
	Message string

	// Tone is an optional preset ID or free-form instruction
	Tone string
}

func (x *ChatInput) Validate() error {
	if err := x.OwnerID.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidInput, "invalid owner", goerr.V("cause", err.Error()))
	}
	if strings.TrimSpace(x.Message) == "" {
		return goerr.Wrap(ErrInvalidInput, "message is required")
	}
	return nil
}

var chatResponseSchema = &gollem.Parameter{
	Title:       "ChatReply",
	Description: "Structured reply from the business copilot",
	Type:        gollem.TypeObject,
	Properties: map[string]*gollem.Parameter{
		"speakable_response": {
			Type:        gollem.TypeString,
			Description: "Conversational reply shown to the user. Plain text, no markdown.",
			Required:    true,
		},
		"action": {
			Type:        gollem.TypeObject,
			Description: "Optional operation the user asked for. Omit when the request is informational.",
			Properties: map[string]*gollem.Parameter{
				"type": {
					Type:        gollem.TypeString,
					Description: "Name of the requested operation",
					Required:    true,
				},
				"parameters": {
					Type:        gollem.TypeObject,
					Description: "Arguments of the requested operation",
				},
			},
		},
	},
}

// Chat runs one conversational turn: assemble the context window, invoke
// the model chain, normalize the reply, and persist the turn. Context
// sources degrade independently; only model exhaustion and persistence
// failure abort the turn.
func (uc *UseCases) Chat(ctx context.Context, input *ChatInput) (*model.Reply, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.turnTimeout)
	defer cancel()

	window := uc.assembleContext(ctx, input.OwnerID, input.Message)

	prompt, err := buildChatSystemPrompt(window, uc.tones.Resolve(input.Tone))
	if err != nil {
		return nil, err
	}

	resp, err := uc.invoker.ChatCompletion(ctx, &llm.Request{
		SystemPrompt:   prompt,
		UserMessage:    input.Message,
		ResponseJSON:   true,
		ResponseSchema: chatResponseSchema,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, goerr.Wrap(ErrTurnTimeout, "chat turn failed",
				goerr.V("ownerID", input.OwnerID),
				goerr.V("timeout", uc.turnTimeout),
			)
		}
		return nil, goerr.Wrap(err, "chat turn failed",
			goerr.V("ownerID", input.OwnerID),
		)
	}

	reply := interpretModelOutput(resp.Text)
	reply.Provider = resp.Provider
	reply.Citations = window.Citations()

	turn := &model.ConversationTurn{
		UserMessage:      input.Message,
		AssistantMessage: reply.DisplayText,
		Action:           reply.Action,
	}
	encoded, err := turn.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := uc.repo.Memory().Create(ctx, input.OwnerID, &model.MemoryRecord{
		Kind:      types.MemoryKindShortTerm,
		Content:   encoded,
		CreatedAt: uc.now().UTC(),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to persist conversation turn",
			goerr.V("ownerID", input.OwnerID),
		)
	}

	ownerID := input.OwnerID
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.maybeSummarize(ctx, ownerID)
	})

	return reply, nil
}

// assembleContext gathers the bounded context window for one turn. The
// three sources (stored memory, live metrics, document retrieval) are
// fetched in parallel, each under its own deadline, and a failed source
// marks itself unavailable instead of failing the turn.
func (uc *UseCases) assembleContext(ctx context.Context, ownerID types.OwnerID, message string) *model.ContextWindow {
	logger := logging.From(ctx)
	window := &model.ContextWindow{UserMessage: message}

	var eg errgroup.Group

	eg.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
		defer cancel()

		longTerm, err := uc.repo.Memory().ListRecent(fctx, ownerID, types.MemoryKindLongTerm, longTermLimit)
		if err != nil {
			logger.Warn("failed to load long-term memory", "ownerID", ownerID, "error", err.Error())
			window.MemoryUnavailable = true
			return nil
		}
		window.LongTerm = longTerm

		recent, err := uc.repo.Memory().ListRecent(fctx, ownerID, types.MemoryKindShortTerm, shortTermLimit)
		if err != nil {
			logger.Warn("failed to load recent turns", "ownerID", ownerID, "error", err.Error())
			window.MemoryUnavailable = true
			return nil
		}
		// ListRecent returns newest first; the prompt wants oldest first
		turns := make([]model.ConversationTurn, 0, len(recent))
		for i := len(recent) - 1; i >= 0; i-- {
			turns = append(turns, model.DecodeTurn(recent[i].Content))
		}
		window.Turns = turns
		return nil
	})

	eg.Go(func() error {
		if uc.analytics == nil {
			window.MetricsUnavailable = true
			return nil
		}
		fctx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
		defer cancel()

		snapshot, err := uc.analytics.RecentKPIs(fctx, ownerID, metricsWindowDays)
		if err != nil {
			logger.Warn("failed to load KPI snapshot", "ownerID", ownerID, "error", err.Error())
			window.MetricsUnavailable = true
			return nil
		}
		window.Metrics = snapshot
		return nil
	})

	eg.Go(func() error {
		if uc.retrieval == nil {
			window.RetrievalUnavailable = true
			return nil
		}
		fctx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
		defer cancel()

		matches, err := uc.retrieval.Search(fctx, message, documentLimit)
		if err != nil {
			logger.Warn("document retrieval failed", "ownerID", ownerID, "error", err.Error())
			window.RetrievalUnavailable = true
			return nil
		}
		// An empty result set is a successful search, not an outage
		window.Matches = matches
		return nil
	})

	// The goroutines report degradation through the window flags and
	// never return an error.
	_ = eg.Wait()

	return window
}

type chatPromptMemory struct {
	CreatedAt string
	Content   string
}

type chatPromptData struct {
	Tone                 string
	Metrics              *model.KPISnapshot
	MetricsUnavailable   bool
	LongTerm             []chatPromptMemory
	MemoryUnavailable    bool
	Turns                []model.ConversationTurn
	Documents            []*model.DocumentMatch
	RetrievalUnavailable bool
}

func buildChatSystemPrompt(window *model.ContextWindow, tone string) (string, error) {
	data := chatPromptData{
		Tone:                 tone,
		Metrics:              window.Metrics,
		MetricsUnavailable:   window.MetricsUnavailable,
		MemoryUnavailable:    window.MemoryUnavailable,
		Turns:                window.Turns,
		Documents:            window.Matches,
		RetrievalUnavailable: window.RetrievalUnavailable,
	}
	for _, rec := range window.LongTerm {
		data.LongTerm = append(data.LongTerm, chatPromptMemory{
			CreatedAt: rec.CreatedAt.Format(time.DateOnly),
			Content:   rec.Content,
		})
	}

	var buf bytes.Buffer
	if err := chatSystemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render chat system prompt")
	}
	return buf.String(), nil
}

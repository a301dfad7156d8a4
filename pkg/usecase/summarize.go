package usecase

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

//go:embed prompt/summarize_system.md
var summarizeSystemPrompt string

// maybeSummarize compresses the last batch of turns into a long-term
// summary once the short-term count reaches a multiple of the cadence.
// Runs after the turn has completed; a failure here loses one
// summarization cycle, never a turn.
func (uc *UseCases) maybeSummarize(ctx context.Context, ownerID types.OwnerID) error {
	count, err := uc.repo.Memory().CountByKind(ctx, ownerID, types.MemoryKindShortTerm)
	if err != nil {
		return goerr.Wrap(err, "failed to count conversation turns",
			goerr.V("ownerID", ownerID),
		)
	}
	if count == 0 || count%uc.summarizeEvery != 0 {
		return nil
	}

	records, err := uc.repo.Memory().ListRecent(ctx, ownerID, types.MemoryKindShortTerm, uc.summarizeEvery)
	if err != nil {
		return goerr.Wrap(err, "failed to load turns for summarization",
			goerr.V("ownerID", ownerID),
		)
	}

	transcript := buildTranscript(records)
	if transcript == "" {
		return nil
	}

	resp, err := uc.invoker.ChatCompletion(ctx, &llm.Request{
		SystemPrompt: summarizeSystemPrompt,
		UserMessage:  transcript,
	})
	if err != nil {
		return goerr.Wrap(err, "summarization failed",
			goerr.V("ownerID", ownerID),
			goerr.V("turns", count),
		)
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		return nil
	}

	if _, err := uc.repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
		Kind:      types.MemoryKindLongTerm,
		Content:   summary,
		CreatedAt: uc.now().UTC(),
	}); err != nil {
		return goerr.Wrap(err, "failed to persist long-term summary",
			goerr.V("ownerID", ownerID),
		)
	}

	logging.From(ctx).Info("created long-term summary",
		"ownerID", ownerID,
		"turns", count,
		"provider", resp.Provider,
	)
	return nil
}

// buildTranscript renders stored turns oldest first for the summarizer
func buildTranscript(records []*model.MemoryRecord) string {
	var sb strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		turn := model.DecodeTurn(records[i].Content)
		if turn.UserMessage != "" {
			fmt.Fprintf(&sb, "User: %s\n", turn.UserMessage)
		}
		if turn.AssistantMessage != "" {
			fmt.Fprintf(&sb, "Assistant: %s\n", turn.AssistantMessage)
		}
	}
	return strings.TrimSpace(sb.String())
}

package usecase

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/llm"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

//go:embed prompt/dashboard_system.md
var dashboardSystemPrompt string

// dashboardFallbackText is served when no narrative can be produced.
// Never persisted, so the next request tries again.
const dashboardFallbackText = "Sales and profit performance summary unavailable right now. Try again shortly."

// DashboardSummary is the TTL-cached narrative shown on the dashboard
type DashboardSummary struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// GetDashboardSummary returns the current dashboard narrative. A stored
// summary younger than the TTL is served as-is; otherwise a fresh one is
// generated from live metrics and appended, superseding the old record.
// force skips the freshness check. Generation failure degrades to a
// static fallback instead of an error.
func (uc *UseCases) GetDashboardSummary(ctx context.Context, ownerID types.OwnerID, force bool) (*DashboardSummary, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx)
	now := uc.now().UTC()

	if !force {
		latest, err := uc.repo.Memory().Latest(ctx, ownerID, types.MemoryKindDashboardSummary)
		if err != nil {
			logger.Warn("failed to load cached dashboard summary", "ownerID", ownerID, "error", err.Error())
		} else if latest != nil && now.Sub(latest.CreatedAt) < uc.cacheTTL {
			return &DashboardSummary{
				Text:        latest.Content,
				GeneratedAt: latest.CreatedAt,
				Cached:      true,
			}, nil
		}
	}

	text, ok := uc.generateDashboardText(ctx, ownerID)
	if !ok {
		return &DashboardSummary{Text: dashboardFallbackText, GeneratedAt: now}, nil
	}

	if _, err := uc.repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
		Kind:      types.MemoryKindDashboardSummary,
		Content:   text,
		CreatedAt: now,
	}); err != nil {
		// Serve the fresh text anyway; only the cache entry is lost
		logger.Warn("failed to persist dashboard summary", "ownerID", ownerID, "error", err.Error())
	}

	return &DashboardSummary{Text: text, GeneratedAt: now}, nil
}

// generateDashboardText builds a narrative from live metrics. Returns
// false when metrics or every model provider are unavailable.
func (uc *UseCases) generateDashboardText(ctx context.Context, ownerID types.OwnerID) (string, bool) {
	logger := logging.From(ctx)

	if uc.analytics == nil {
		return "", false
	}
	snapshot, err := uc.analytics.RecentKPIs(ctx, ownerID, metricsWindowDays)
	if err != nil {
		logger.Warn("failed to load metrics for dashboard summary", "ownerID", ownerID, "error", err.Error())
		return "", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Revenue (trailing 30 days): %.2f\n", snapshot.Revenue)
	fmt.Fprintf(&sb, "Profit (trailing 30 days): %.2f\n", snapshot.Profit)
	fmt.Fprintf(&sb, "Average order value: %.2f\n", snapshot.AverageOrderValue)
	fmt.Fprintf(&sb, "New customers: %d\n", snapshot.NewCustomers)
	for _, ch := range snapshot.Channels {
		fmt.Fprintf(&sb, "Channel %s: %.2f\n", ch.Platform, ch.Revenue)
	}

	resp, err := uc.invoker.ChatCompletion(ctx, &llm.Request{
		SystemPrompt: dashboardSystemPrompt,
		UserMessage:  sb.String(),
	})
	if err != nil {
		logger.Warn("dashboard summary generation failed", "ownerID", ownerID, "error", err.Error())
		return "", false
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", false
	}
	return text, true
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// Alert thresholds on the day-over-day percent change
const (
	insightDropThreshold  = -20.0
	insightSpikeThreshold = 25.0
)

// SweepInsights compares the last two KPI day buckets and records an
// insight for each metric that crossed an alert threshold. Returns the
// created records; an empty result means nothing noteworthy happened.
func (uc *UseCases) SweepInsights(ctx context.Context, ownerID types.OwnerID) ([]*model.MemoryRecord, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}
	if uc.analytics == nil {
		return nil, goerr.New("analytics client is not configured")
	}

	days, err := uc.analytics.DailyKPIs(ctx, ownerID, 2)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load KPI days for insight sweep",
			goerr.V("ownerID", ownerID),
		)
	}
	if len(days) < 2 {
		return nil, nil
	}
	prev, cur := days[len(days)-2], days[len(days)-1]

	var created []*model.MemoryRecord
	for _, obs := range []struct {
		metric    string
		prev, cur float64
	}{
		{"Revenue", prev.Revenue, cur.Revenue},
		{"Profit", prev.Profit, cur.Profit},
	} {
		content, ok := describeMovement(obs.metric, obs.prev, obs.cur)
		if !ok {
			continue
		}
		rec, err := uc.repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
			Kind:      types.MemoryKindInsight,
			Content:   content,
			CreatedAt: uc.now().UTC(),
		})
		if err != nil {
			return created, goerr.Wrap(err, "failed to persist insight",
				goerr.V("ownerID", ownerID),
			)
		}
		created = append(created, rec)
	}

	return created, nil
}

// describeMovement reports a threshold crossing as insight text. A
// non-positive baseline produces nothing: a percent change against a
// zero or negative day is meaningless.
func describeMovement(metric string, prev, cur float64) (string, bool) {
	if prev <= 0 {
		return "", false
	}
	delta := percentDelta(prev, cur)
	switch {
	case delta <= insightDropThreshold:
		return fmt.Sprintf("%s dropped %.1f%% vs the previous day (%.2f -> %.2f).",
			metric, -delta, prev, cur), true
	case delta >= insightSpikeThreshold:
		return fmt.Sprintf("%s spiked %.1f%% vs the previous day (%.2f -> %.2f).",
			metric, delta, prev, cur), true
	default:
		return "", false
	}
}

// DeleteInsight removes an insight record. Deleting any other memory
// kind is rejected; memories outside the insight tier are append-only.
func (uc *UseCases) DeleteInsight(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) error {
	if err := ownerID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(string(recordID)) == "" {
		return goerr.Wrap(ErrInvalidInput, "record ID is required")
	}

	rec, err := uc.repo.Memory().Get(ctx, ownerID, recordID)
	if err != nil {
		return goerr.Wrap(err, "failed to load record",
			goerr.V("ownerID", ownerID),
			goerr.V("recordID", recordID),
		)
	}
	if rec.Kind != types.MemoryKindInsight {
		return goerr.Wrap(ErrNotInsight, "deletion is limited to insights",
			goerr.V("recordID", recordID),
			goerr.V("kind", rec.Kind),
		)
	}

	return uc.repo.Memory().Delete(ctx, ownerID, recordID)
}

// SaveAgentContext appends shared context written by an agent pipeline
func (uc *UseCases) SaveAgentContext(ctx context.Context, ownerID types.OwnerID, content string) (*model.MemoryRecord, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "content is required")
	}

	return uc.repo.Memory().Create(ctx, ownerID, &model.MemoryRecord{
		Kind:      types.MemoryKindAgentContext,
		Content:   content,
		CreatedAt: uc.now().UTC(),
	})
}

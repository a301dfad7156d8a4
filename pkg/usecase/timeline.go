package usecase

import (
	"context"
	"time"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

const (
	timelineMinDays     = 7
	timelineMaxDays     = 180
	timelineDefaultDays = 30
)

// timelineEventKinds are the memory kinds rendered as timeline events.
// Conversation turns are excluded as too noisy at this granularity.
var timelineEventKinds = []types.MemoryKind{
	types.MemoryKindInsight,
	types.MemoryKindDashboardSummary,
	types.MemoryKindLongTerm,
	types.MemoryKindAgentContext,
}

// Timeline builds the chronological memory view of an owner: memory
// events plus a dense per-day KPI series. days is clamped to
// [7, 180]; zero selects the default window. The KPI series is best
// effort and stays empty when analytics is unavailable.
func (uc *UseCases) Timeline(ctx context.Context, ownerID types.OwnerID, days int) (*model.Timeline, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, err
	}

	if days == 0 {
		days = timelineDefaultDays
	}
	if days < timelineMinDays {
		days = timelineMinDays
	}
	if days > timelineMaxDays {
		days = timelineMaxDays
	}

	now := uc.now().UTC()
	to := now
	from := startOfDay(now.AddDate(0, 0, -(days - 1)))

	records, err := uc.repo.Memory().ListSince(ctx, ownerID, timelineEventKinds, from)
	if err != nil {
		return nil, err
	}

	timeline := &model.Timeline{
		From:   from,
		To:     to,
		Days:   days,
		Events: make([]model.TimelineEvent, 0, len(records)),
	}
	for _, rec := range records {
		timeline.Events = append(timeline.Events, model.TimelineEvent{
			Kind:      rec.Kind,
			Title:     rec.Kind.Title(),
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
		})
		switch rec.Kind {
		case types.MemoryKindInsight:
			timeline.Counts.Insights++
		case types.MemoryKindDashboardSummary:
			timeline.Counts.Summaries++
		case types.MemoryKindLongTerm:
			timeline.Counts.Memories++
		case types.MemoryKindAgentContext:
			timeline.Counts.AgentContexts++
		}
	}

	timeline.KPIs = uc.dailySeries(ctx, ownerID, from, days)

	return timeline, nil
}

// dailySeries fetches per-day KPIs and densifies them: every day in the
// window gets a bucket, zero-filled when the source has no data, with
// day-over-day percent deltas.
func (uc *UseCases) dailySeries(ctx context.Context, ownerID types.OwnerID, from time.Time, days int) []*model.KPIDay {
	if uc.analytics == nil {
		return nil
	}

	raw, err := uc.analytics.DailyKPIs(ctx, ownerID, days)
	if err != nil {
		logging.From(ctx).Warn("failed to load daily KPIs", "ownerID", ownerID, "error", err.Error())
		return nil
	}

	byDay := make(map[string]*model.KPIDay, len(raw))
	for _, d := range raw {
		byDay[d.Day] = d
	}

	series := make([]*model.KPIDay, 0, days)
	var prev *model.KPIDay
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format(time.DateOnly)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &model.KPIDay{Day: day}
		}
		if prev != nil {
			bucket.RevenueDelta = percentDelta(prev.Revenue, bucket.Revenue)
			bucket.ProfitDelta = percentDelta(prev.Profit, bucket.Profit)
		}
		series = append(series, bucket)
		prev = bucket
	}

	return series
}

// percentDelta is the day-over-day change relative to the previous
// value. A zero or negative baseline yields no meaningful percentage,
// so those report 0.
func percentDelta(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package interfaces

import (
	"context"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// AnalyticsClient reads live business metrics from the analytics
// collaborator. Read-only and best effort: failures degrade the caller,
// never abort it.
type AnalyticsClient interface {
	// RecentKPIs returns aggregate KPIs over the trailing window
	RecentKPIs(ctx context.Context, ownerID types.OwnerID, windowDays int) (*model.KPISnapshot, error)

	// DailyKPIs returns per-day KPI buckets over the trailing window,
	// oldest first. Days without data may be missing.
	DailyKPIs(ctx context.Context, ownerID types.OwnerID, days int) ([]*model.KPIDay, error)
}

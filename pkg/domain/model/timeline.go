package model

import (
	"time"

	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// TimelineEvent is one entry in the owner's memory timeline
type TimelineEvent struct {
	Kind      types.MemoryKind `json:"kind"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
}

// TimelineCounts summarizes the timeline composition. Summaries counts
// dashboard narratives; Memories counts durable conversation summaries.
type TimelineCounts struct {
	Insights      int `json:"insights"`
	Summaries     int `json:"summaries"`
	Memories      int `json:"memories"`
	AgentContexts int `json:"agent_contexts"`
}

// Timeline is the chronological memory view of an owner: memory events
// plus a dense per-day KPI series over the requested window.
type Timeline struct {
	From   time.Time       `json:"from"`
	To     time.Time       `json:"to"`
	Days   int             `json:"days"`
	KPIs   []*KPIDay       `json:"kpis"`
	Events []TimelineEvent `json:"events"`
	Counts TimelineCounts  `json:"counts"`
}

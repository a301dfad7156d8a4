package types

import "github.com/m-mizutani/goerr/v2"

// MemoryKind represents the tier of a persisted memory record.
// The kind is immutable after creation; records are appended, never
// mutated in place.
type MemoryKind string

const (
	// MemoryKindShortTerm is one conversation turn, created on every chat.
	MemoryKindShortTerm MemoryKind = "short_term"
	// MemoryKindLongTerm is a compressed summary of recent turns, created
	// only by the summarization path.
	MemoryKindLongTerm MemoryKind = "long_term"
	// MemoryKindInsight is a free-standing observation about the business,
	// the only kind deletable by explicit user action.
	MemoryKindInsight MemoryKind = "insight"
	// MemoryKindDashboardSummary is the TTL-cached dashboard narrative.
	// Newer records supersede older ones; the current value is the most
	// recent by creation time.
	MemoryKindDashboardSummary MemoryKind = "dashboard_summary"
	// MemoryKindAgentContext is shared context written by agent pipelines
	// to keep multi-agent runs coherent.
	MemoryKindAgentContext MemoryKind = "agent_context"
)

// AllMemoryKinds returns all valid memory kinds
func AllMemoryKinds() []MemoryKind {
	return []MemoryKind{
		MemoryKindShortTerm,
		MemoryKindLongTerm,
		MemoryKindInsight,
		MemoryKindDashboardSummary,
		MemoryKindAgentContext,
	}
}

// IsValid checks if the memory kind is valid
func (k MemoryKind) IsValid() bool {
	switch k {
	case MemoryKindShortTerm,
		MemoryKindLongTerm,
		MemoryKindInsight,
		MemoryKindDashboardSummary,
		MemoryKindAgentContext:
		return true
	default:
		return false
	}
}

// String returns the string representation of the memory kind
func (k MemoryKind) String() string {
	return string(k)
}

// Title returns a human readable label for timeline rendering
func (k MemoryKind) Title() string {
	switch k {
	case MemoryKindInsight:
		return "AI Insight"
	case MemoryKindDashboardSummary:
		return "Dashboard Summary"
	case MemoryKindAgentContext:
		return "Agent Context"
	case MemoryKindShortTerm:
		return "Conversation"
	case MemoryKindLongTerm:
		return "Long-term Memory"
	default:
		return "Memory"
	}
}

// ParseMemoryKind parses a string into a MemoryKind
func ParseMemoryKind(s string) (MemoryKind, error) {
	kind := MemoryKind(s)
	if !kind.IsValid() {
		return "", goerr.New("invalid memory kind", goerr.V("kind", s))
	}
	return kind, nil
}

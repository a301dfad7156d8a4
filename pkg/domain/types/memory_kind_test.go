package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

func TestMemoryKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind types.MemoryKind
		want bool
	}{
		{name: "valid short term", kind: types.MemoryKindShortTerm, want: true},
		{name: "valid long term", kind: types.MemoryKindLongTerm, want: true},
		{name: "valid insight", kind: types.MemoryKindInsight, want: true},
		{name: "valid dashboard summary", kind: types.MemoryKindDashboardSummary, want: true},
		{name: "valid agent context", kind: types.MemoryKindAgentContext, want: true},
		{name: "invalid kind", kind: types.MemoryKind("episodic"), want: false},
		{name: "empty kind", kind: types.MemoryKind(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, tt.kind.IsValid(), tt.want)
		})
	}
}

func TestParseMemoryKind(t *testing.T) {
	kind, err := types.ParseMemoryKind("long_term")
	gt.NoError(t, err)
	gt.Equal(t, kind, types.MemoryKindLongTerm)

	_, err = types.ParseMemoryKind("medium_term")
	gt.Error(t, err)
}

func TestOwnerID_Validate(t *testing.T) {
	gt.NoError(t, types.OwnerID("user-1").Validate())
	gt.Error(t, types.OwnerID("").Validate())
}

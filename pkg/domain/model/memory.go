package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// MemoryRecordID is a UUID-based identifier for MemoryRecord
type MemoryRecordID string

// NewMemoryRecordID generates a new UUID v4 MemoryRecordID
func NewMemoryRecordID() MemoryRecordID {
	return MemoryRecordID(uuid.New().String())
}

// MemoryRecord is the single persisted entity for all memory tiers.
// Records are append-only: they are created once and never mutated.
// Only insight records may be deleted, by explicit user action.
type MemoryRecord struct {
	ID        MemoryRecordID
	OwnerID   types.OwnerID
	Kind      types.MemoryKind
	Content   string
	CreatedAt time.Time
}

package interfaces

import (
	"context"
	"time"

	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// MemoryRepository defines the append-only persistence interface for
// MemoryRecord. There is no update operation: newer records supersede
// older ones of the same kind, and "current" always means most recent
// by creation time.
type MemoryRepository interface {
	// Create appends a new memory record
	Create(ctx context.Context, ownerID types.OwnerID, record *model.MemoryRecord) (*model.MemoryRecord, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) (*model.MemoryRecord, error)

	// ListRecent retrieves up to limit records of the given kind,
	// most recent first
	ListRecent(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind, limit int) ([]*model.MemoryRecord, error)

	// Latest retrieves the most recent record of the given kind, or nil
	// when none exists
	Latest(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind) (*model.MemoryRecord, error)

	// CountByKind returns the number of records of the given kind
	CountByKind(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind) (int, error)

	// ListSince retrieves records of the given kinds created at or after
	// since, oldest first
	ListSince(ctx context.Context, ownerID types.OwnerID, kinds []types.MemoryKind, since time.Time) ([]*model.MemoryRecord, error)

	// Delete removes a record by ID. Callers are responsible for
	// enforcing the insight-only deletion policy.
	Delete(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) error
}

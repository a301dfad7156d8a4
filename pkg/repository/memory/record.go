package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

// storedRecord keeps an insertion sequence so that records created
// within the same clock tick still have a total "most recent" order.
type storedRecord struct {
	record *model.MemoryRecord
	seq    uint64
}

type recordRepository struct {
	mu      sync.RWMutex
	nextSeq uint64
	entries map[types.OwnerID][]storedRecord
}

func newRecordRepository() *recordRepository {
	return &recordRepository{
		entries: make(map[types.OwnerID][]storedRecord),
	}
}

func copyRecord(r *model.MemoryRecord) *model.MemoryRecord {
	copied := *r
	return &copied
}

func (r *recordRepository) Create(ctx context.Context, ownerID types.OwnerID, record *model.MemoryRecord) (*model.MemoryRecord, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid owner ID")
	}
	if !record.Kind.IsValid() {
		return nil, goerr.New("invalid memory kind", goerr.V("kind", record.Kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyRecord(record)
	if created.ID == "" {
		created.ID = model.NewMemoryRecordID()
	}
	created.OwnerID = ownerID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.nextSeq++
	r.entries[ownerID] = append(r.entries[ownerID], storedRecord{record: created, seq: r.nextSeq})

	return copyRecord(created), nil
}

func (r *recordRepository) Get(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) (*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries[ownerID] {
		if entry.record.ID == recordID {
			return copyRecord(entry.record), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "memory record not found", goerr.V("recordID", recordID))
}

// sortedByNewest returns the owner's records of the given kinds, most
// recent first. Caller must hold at least a read lock.
func (r *recordRepository) sortedByNewest(ownerID types.OwnerID, match func(types.MemoryKind) bool) []storedRecord {
	var result []storedRecord
	for _, entry := range r.entries[ownerID] {
		if match(entry.record.Kind) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].record.CreatedAt.Equal(result[j].record.CreatedAt) {
			return result[i].record.CreatedAt.After(result[j].record.CreatedAt)
		}
		return result[i].seq > result[j].seq
	})
	return result
}

func (r *recordRepository) ListRecent(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind, limit int) ([]*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.sortedByNewest(ownerID, func(k types.MemoryKind) bool { return k == kind })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	result := make([]*model.MemoryRecord, len(entries))
	for i, entry := range entries {
		result[i] = copyRecord(entry.record)
	}
	return result, nil
}

func (r *recordRepository) Latest(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind) (*model.MemoryRecord, error) {
	records, err := r.ListRecent(ctx, ownerID, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *recordRepository) CountByKind(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries[ownerID] {
		if entry.record.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (r *recordRepository) ListSince(ctx context.Context, ownerID types.OwnerID, kinds []types.MemoryKind, since time.Time) ([]*model.MemoryRecord, error) {
	kindSet := make(map[types.MemoryKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.sortedByNewest(ownerID, func(k types.MemoryKind) bool { return kindSet[k] })

	// oldest first
	result := make([]*model.MemoryRecord, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].record.CreatedAt.Before(since) {
			continue
		}
		result = append(result, copyRecord(entries[i].record))
	}
	return result, nil
}

func (r *recordRepository) Delete(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.entries[ownerID]
	for i, entry := range entries {
		if entry.record.ID == recordID {
			r.entries[ownerID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return goerr.Wrap(ErrNotFound, "memory record not found", goerr.V("recordID", recordID))
}

package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recordDoc is the Firestore document representation of model.MemoryRecord
type recordDoc struct {
	ID        model.MemoryRecordID `firestore:"ID"`
	OwnerID   types.OwnerID        `firestore:"OwnerID"`
	Kind      types.MemoryKind     `firestore:"Kind"`
	Content   string               `firestore:"Content"`
	CreatedAt time.Time            `firestore:"CreatedAt"`
}

func toRecordDoc(r *model.MemoryRecord) *recordDoc {
	return &recordDoc{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Kind:      r.Kind,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func fromRecordDoc(d *recordDoc) *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Kind:      d.Kind,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

type recordRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRecordRepository(client *firestore.Client) *recordRepository {
	return &recordRepository{client: client}
}

// memoriesCollection returns the subcollection path:
// owners/{ownerID}/memories
func (r *recordRepository) memoriesCollection(ownerID types.OwnerID) *firestore.CollectionRef {
	owners := "owners"
	if r.collectionPrefix != "" {
		owners = r.collectionPrefix + "_owners"
	}
	return r.client.Collection(owners).Doc(ownerID.String()).Collection("memories")
}

func (r *recordRepository) Create(ctx context.Context, ownerID types.OwnerID, record *model.MemoryRecord) (*model.MemoryRecord, error) {
	if err := ownerID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid owner ID")
	}
	if !record.Kind.IsValid() {
		return nil, goerr.New("invalid memory kind", goerr.V("kind", record.Kind))
	}

	created := *record
	if created.ID == "" {
		created.ID = model.NewMemoryRecordID()
	}
	created.OwnerID = ownerID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.memoriesCollection(ownerID).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toRecordDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory record", goerr.V("recordID", created.ID))
	}

	return &created, nil
}

func (r *recordRepository) Get(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) (*model.MemoryRecord, error) {
	doc, err := r.memoriesCollection(ownerID).Doc(string(recordID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "memory record not found", goerr.V("recordID", recordID))
		}
		return nil, goerr.Wrap(err, "failed to get memory record", goerr.V("recordID", recordID))
	}

	var d recordDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory record", goerr.V("recordID", recordID))
	}

	return fromRecordDoc(&d), nil
}

func (r *recordRepository) collectDocs(iter *firestore.DocumentIterator) ([]*model.MemoryRecord, error) {
	defer iter.Stop()

	var result []*model.MemoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory records")
		}

		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory record")
		}
		result = append(result, fromRecordDoc(&d))
	}
	return result, nil
}

func (r *recordRepository) ListRecent(ctx context.Context, ownerID types.OwnerID, kind types.MemoryKind, limit int) ([]*model.MemoryRecord, error) {
	query := r.memoriesCollection(ownerID).
		Where("Kind", "==", kind.String()).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return r.collectDocs(query.Documents(ctx))
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
	query := r.memoriesCollection(ownerID).Where("Kind", "==", kind.String())

	results, err := query.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count memory records", goerr.V("kind", kind))
	}

	value, ok := results["count"]
	if !ok {
		return 0, goerr.New("count aggregation missing from result")
	}
	countValue, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected count aggregation type")
	}

	return int(countValue.GetIntegerValue()), nil
}

func (r *recordRepository) ListSince(ctx context.Context, ownerID types.OwnerID, kinds []types.MemoryKind, since time.Time) ([]*model.MemoryRecord, error) {
	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = k.String()
	}

	query := r.memoriesCollection(ownerID).
		Where("Kind", "in", kindNames).
		Where("CreatedAt", ">=", since).
		OrderBy("CreatedAt", firestore.Asc)

	return r.collectDocs(query.Documents(ctx))
}

func (r *recordRepository) Delete(ctx context.Context, ownerID types.OwnerID, recordID model.MemoryRecordID) error {
	docRef := r.memoriesCollection(ownerID).Doc(string(recordID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "memory record not found", goerr.V("recordID", recordID))
		}
		return goerr.Wrap(err, "failed to get memory record", goerr.V("recordID", recordID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory record", goerr.V("recordID", recordID))
	}

	return nil
}

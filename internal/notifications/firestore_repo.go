package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection is the Firestore collection holding notification records.
const Collection = "notifications"

type firestoreRecord struct {
	UserID    string         `firestore:"userId"`
	Type      string         `firestore:"type"`
	Title     string         `firestore:"title"`
	Message   string         `firestore:"message"`
	Data      map[string]any `firestore:"data"`
	IsRead    bool           `firestore:"isRead"`
	ReadAt    *time.Time     `firestore:"readAt"`
	Priority  string         `firestore:"priority"`
	Link      string         `firestore:"link,omitempty"`
	CreatedAt time.Time      `firestore:"createdAt,serverTimestamp"`
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository stores records in the notifications collection with
// server-assigned creation timestamps.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(Collection)
}

func (r *firestoreRepository) Create(ctx context.Context, record *Record) error {
	ref := r.collection().NewDoc()
	doc := firestoreRecord{
		UserID:   record.UserID,
		Type:     string(record.Type),
		Title:    record.Title,
		Message:  record.Message,
		Data:     record.Data,
		Priority: string(record.Priority),
		Link:     record.Link,
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	result, err := ref.Create(ctx, doc)
	if err != nil {
		return err
	}
	record.ID = ref.ID
	record.CreatedAt = result.UpdateTime.UTC()
	return nil
}

func (r *firestoreRepository) Get(ctx context.Context, id string) (*Record, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record, err := decodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUser filters on userId and, when until is set, createdAt. The range
// filter needs the (userId, createdAt) composite index; first pages do not.
func (r *firestoreRepository) ListByUser(ctx context.Context, userID string, until *time.Time, limit int) ([]Record, error) {
	query := r.collection().Where("userId", "==", userID)
	if until != nil {
		query = query.Where("createdAt", "<=", until.UTC())
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return collect(ctx, query)
}

func (r *firestoreRepository) ListUnread(ctx context.Context, userID string) ([]Record, error) {
	return collect(ctx, r.unreadQuery(userID))
}

func (r *firestoreRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	query := r.unreadQuery(userID)
	result, err := query.NewAggregationQuery().WithCount("unread").Get(ctx)
	if err != nil {
		return 0, err
	}
	value, ok := result["unread"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", result["unread"])
	}
	return value.GetIntegerValue(), nil
}

func (r *firestoreRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	ref := r.collection().Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		isRead, err := snap.DataAt("isRead")
		if err == nil && isRead == true {
			return nil
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "readAt", Value: at.UTC()},
		})
	})
}

func (r *firestoreRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection().Doc(id).Delete(ctx)
	return err
}

func (r *firestoreRepository) unreadQuery(userID string) firestore.Query {
	return r.collection().Where("userId", "==", userID).Where("isRead", "==", false)
}

func collect(ctx context.Context, query firestore.Query) ([]Record, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	out := []Record{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		record, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (Record, error) {
	var doc firestoreRecord
	if err := snap.DataTo(&doc); err != nil {
		return Record{}, fmt.Errorf("decode notification %s: %w", snap.Ref.ID, err)
	}
	record := Record{
		ID:        snap.Ref.ID,
		UserID:    doc.UserID,
		Type:      enums.NotificationType(doc.Type),
		Title:     doc.Title,
		Message:   doc.Message,
		Data:      doc.Data,
		IsRead:    doc.IsRead,
		ReadAt:    doc.ReadAt,
		Priority:  enums.Priority(doc.Priority),
		Link:      doc.Link,
		CreatedAt: doc.CreatedAt,
	}
	if record.Data == nil {
		record.Data = map[string]any{}
	}
	return record, nil
}

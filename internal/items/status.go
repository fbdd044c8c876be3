package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/gearmarket-backend/pkg/db/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Collection holds marketplace listings in Firestore.
const Collection = "items"

// ErrNotFound is returned when the item does not exist.
var ErrNotFound = errors.New("item not found")

// StatusReader reads the authoritative status of a listing.
type StatusReader interface {
	CurrentStatus(ctx context.Context, itemID string) (string, error)
}

type sqlStatusReader struct {
	db *gorm.DB
}

// NewSQLStatusReader reads item status from the items table.
func NewSQLStatusReader(db *gorm.DB) StatusReader {
	return &sqlStatusReader{db: db}
}

func (r *sqlStatusReader) CurrentStatus(ctx context.Context, itemID string) (string, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Select("id", "status").Where("id = ?", itemID).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return item.Status, nil
}

type firestoreStatusReader struct {
	client *firestore.Client
}

// NewFirestoreStatusReader reads the status field of items/{itemId}.
func NewFirestoreStatusReader(client *firestore.Client) StatusReader {
	return &firestoreStatusReader{client: client}
}

func (r *firestoreStatusReader) CurrentStatus(ctx context.Context, itemID string) (string, error) {
	snap, err := r.client.Collection(Collection).Doc(itemID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	raw, err := snap.DataAt("status")
	if err != nil {
		return "", fmt.Errorf("item %s has no status: %w", itemID, err)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("item %s status has type %T", itemID, raw)
	}
	return strings.TrimSpace(value), nil
}

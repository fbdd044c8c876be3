package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/gearmarket-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/gearmarket-backend/pkg/db/types"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("notification not found")

// Repository abstracts the document store holding notification records.
// ListByUser applies no ordering; callers sort.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// ListByUser returns up to limit records created at or before until.
	// A nil until or non-positive limit disables that bound.
	ListByUser(ctx context.Context, userID string, until *time.Time, limit int) ([]Record, error)
	ListUnread(ctx context.Context, userID string) ([]Record, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead only touches unread records so readAt is written once.
	MarkRead(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type sqlRepository struct {
	db *gorm.DB
}

// NewSQLRepository returns a notifications repository bound to the provided database.
func NewSQLRepository(db *gorm.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) Create(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	row := toRow(record)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *sqlRepository) Get(ctx context.Context, id string) (*Record, error) {
	var row models.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record := fromRow(row)
	return &record, nil
}

func (r *sqlRepository) ListByUser(ctx context.Context, userID string, until *time.Time, limit int) ([]Record, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if until != nil {
		query = query.Where("created_at <= ?", until.UTC())
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *sqlRepository) ListUnread(ctx context.Context, userID string) ([]Record, error) {
	var rows []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *sqlRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *sqlRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()}).Error
}

func (r *sqlRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{}).Error
}

func toRow(record *Record) models.Notification {
	row := models.Notification{
		ID:        record.ID,
		UserID:    record.UserID,
		Type:      string(record.Type),
		Title:     record.Title,
		Message:   record.Message,
		Data:      dbtypes.JSONMap(record.Data),
		IsRead:    record.IsRead,
		ReadAt:    record.ReadAt,
		Priority:  string(record.Priority),
		CreatedAt: record.CreatedAt.UTC(),
	}
	if record.Link != "" {
		link := record.Link
		row.Link = &link
	}
	return row
}

func fromRow(row models.Notification) Record {
	record := Record{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      enums.NotificationType(row.Type),
		Title:     row.Title,
		Message:   row.Message,
		Data:      map[string]any(row.Data),
		IsRead:    row.IsRead,
		ReadAt:    row.ReadAt,
		Priority:  enums.Priority(row.Priority),
		CreatedAt: row.CreatedAt,
	}
	if record.Data == nil {
		record.Data = map[string]any{}
	}
	if row.Link != nil {
		record.Link = *row.Link
	}
	return record
}

func fromRows(rows []models.Notification) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}

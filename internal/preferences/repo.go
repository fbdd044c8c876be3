package preferences

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/gearmarket-backend/pkg/db/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection is the Firestore collection keyed by user id.
const Collection = "notificationSettings"

// Repository persists per-user notification settings.
type Repository interface {
	// Get returns nil, nil when the user has no stored settings.
	Get(ctx context.Context, userID string) (*Preferences, error)
	Upsert(ctx context.Context, prefs *Preferences) error
}

type sqlRepository struct {
	db *gorm.DB
}

// NewSQLRepository returns a settings repository bound to the provided database.
func NewSQLRepository(db *gorm.DB) Repository {
	return &sqlRepository{db: db}
}

func (r *sqlRepository) Get(ctx context.Context, userID string) (*Preferences, error) {
	var row models.NotificationSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

func (r *sqlRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	row := toRow(prefs)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func fromRow(row models.NotificationSettings) *Preferences {
	return &Preferences{
		UserID:             row.UserID,
		NewMessage:         row.NewMessage,
		TransactionUpdate:  row.TransactionUpdate,
		LogisticsQuote:     row.LogisticsQuote,
		QuestionAnswer:     row.QuestionAnswer,
		PaymentStatus:      row.PaymentStatus,
		ProductInterest:    row.ProductInterest,
		SystemAnnouncement: row.SystemAnnouncement,
		UpdatedAt:          row.UpdatedAt,
	}
}

func toRow(p *Preferences) models.NotificationSettings {
	return models.NotificationSettings{
		UserID:             p.UserID,
		NewMessage:         p.NewMessage,
		TransactionUpdate:  p.TransactionUpdate,
		LogisticsQuote:     p.LogisticsQuote,
		QuestionAnswer:     p.QuestionAnswer,
		PaymentStatus:      p.PaymentStatus,
		ProductInterest:    p.ProductInterest,
		SystemAnnouncement: p.SystemAnnouncement,
		UpdatedAt:          p.UpdatedAt,
	}
}

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository stores settings as notificationSettings/{userId}.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Get(ctx context.Context, userID string) (*Preferences, error) {
	snap, err := r.client.Collection(Collection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	prefs := Defaults(userID)
	if err := snap.DataTo(prefs); err != nil {
		return nil, err
	}
	prefs.UserID = userID
	return prefs, nil
}

func (r *firestoreRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	if prefs.UpdatedAt.IsZero() {
		prefs.UpdatedAt = time.Now().UTC()
	}
	_, err := r.client.Collection(Collection).Doc(prefs.UserID).Set(ctx, prefs)
	return err
}

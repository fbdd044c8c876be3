package preferences

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
)

// Service manages a user's own notification settings.
type Service interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Update(ctx context.Context, userID string, params UpdateParams) (*Preferences, error)
}

// UpdateParams carries a partial update; nil fields keep their current value.
type UpdateParams struct {
	NewMessage         *bool `json:"newMessage"`
	TransactionUpdate  *bool `json:"transactionUpdate"`
	LogisticsQuote     *bool `json:"logisticsQuote"`
	QuestionAnswer     *bool `json:"questionAnswer"`
	PaymentStatus      *bool `json:"paymentStatus"`
	ProductInterest    *bool `json:"productInterest"`
	SystemAnnouncement *bool `json:"systemAnnouncement"`
}

type service struct {
	repo Repository
}

// NewService wires preferences dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*Preferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification settings")
	}
	if prefs == nil {
		return Defaults(userID), nil
	}
	return prefs, nil
}

func (s *service) Update(ctx context.Context, userID string, params UpdateParams) (*Preferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply(&prefs.NewMessage, params.NewMessage)
	apply(&prefs.TransactionUpdate, params.TransactionUpdate)
	apply(&prefs.LogisticsQuote, params.LogisticsQuote)
	apply(&prefs.QuestionAnswer, params.QuestionAnswer)
	apply(&prefs.PaymentStatus, params.PaymentStatus)
	apply(&prefs.ProductInterest, params.ProductInterest)
	apply(&prefs.SystemAnnouncement, params.SystemAnnouncement)
	prefs.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save notification settings")
	}
	return prefs, nil
}

func apply(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

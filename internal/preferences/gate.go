package preferences

import (
	"context"

	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// Gate decides whether an email may be sent for a notification type.
type Gate interface {
	ShouldSend(ctx context.Context, userID string, notificationType enums.NotificationType) bool
}

type gate struct {
	repo Repository
	logg *logger.Logger
}

// NewGate builds a gate that fails open: lookup errors, missing settings and
// unmapped types all allow the send.
func NewGate(repo Repository, logg *logger.Logger) Gate {
	if logg == nil {
		logg = logger.Nop()
	}
	return &gate{repo: repo, logg: logg}
}

func (g *gate) ShouldSend(ctx context.Context, userID string, notificationType enums.NotificationType) (send bool) {
	logCtx := g.logg.WithFields(ctx, map[string]any{
		"user_id":           userID,
		"notification_type": string(notificationType),
	})

	defer func() {
		if r := recover(); r != nil {
			g.logg.Warn(logCtx, "preference lookup panicked, sending anyway")
			send = true
		}
	}()

	if g.repo == nil {
		return true
	}

	prefs, err := g.repo.Get(ctx, userID)
	if err != nil {
		g.logg.Warn(g.logg.WithField(logCtx, "error", err.Error()), "preference lookup failed, sending anyway")
		return true
	}
	if prefs == nil {
		return true
	}

	allowed, _ := prefs.Allows(notificationType)
	return allowed
}

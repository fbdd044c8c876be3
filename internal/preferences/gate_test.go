package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

type fakeRepository struct {
	getFn    func(ctx context.Context, userID string) (*Preferences, error)
	upsertFn func(ctx context.Context, prefs *Preferences) error
}

func (f *fakeRepository) Get(ctx context.Context, userID string) (*Preferences, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeRepository) Upsert(ctx context.Context, prefs *Preferences) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, prefs)
	}
	return nil
}

func TestGate_FailsOpenOnLookupError(t *testing.T) {
	repo := &fakeRepository{
		getFn: func(ctx context.Context, userID string) (*Preferences, error) {
			return nil, errors.New("firestore unavailable")
		},
	}
	g := NewGate(repo, logger.Nop())

	for _, nt := range enums.NotificationTypes() {
		if !g.ShouldSend(context.Background(), "u1", nt) {
			t.Fatalf("expected fail-open for %s", nt)
		}
	}
}

func TestGate_FailsOpenOnPanic(t *testing.T) {
	repo := &fakeRepository{
		getFn: func(ctx context.Context, userID string) (*Preferences, error) {
			panic("nil client")
		},
	}
	if !NewGate(repo, logger.Nop()).ShouldSend(context.Background(), "u1", enums.NotificationTypePaymentStatus) {
		t.Fatal("expected fail-open after panic")
	}
}

func TestGate_MissingSettingsAllowEverything(t *testing.T) {
	g := NewGate(&fakeRepository{}, logger.Nop())
	for _, nt := range enums.NotificationTypes() {
		if !g.ShouldSend(context.Background(), "u1", nt) {
			t.Fatalf("expected send for %s without stored settings", nt)
		}
	}
	if !NewGate(nil, nil).ShouldSend(context.Background(), "u1", enums.NotificationTypeNewMessage) {
		t.Fatal("expected send without repository")
	}
}

func TestGate_HonorsStoredFlag(t *testing.T) {
	stored := Defaults("u1")
	stored.ProductInterest = false
	repo := &fakeRepository{
		getFn: func(ctx context.Context, userID string) (*Preferences, error) {
			return stored, nil
		},
	}
	g := NewGate(repo, logger.Nop())

	if g.ShouldSend(context.Background(), "u1", enums.NotificationTypeProductInterest) {
		t.Fatal("expected product interest to be suppressed")
	}
	if !g.ShouldSend(context.Background(), "u1", enums.NotificationTypeNewMessage) {
		t.Fatal("expected new message to be allowed")
	}
	if !g.ShouldSend(context.Background(), "u1", enums.NotificationType("purchase_confirmation")) {
		t.Fatal("expected unmapped type to be allowed")
	}
}

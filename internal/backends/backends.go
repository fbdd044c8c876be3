package backends

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gearmarket-backend/internal/delivery"
	"github.com/angelmondragon/gearmarket-backend/internal/items"
	"github.com/angelmondragon/gearmarket-backend/internal/notifications"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/db"
	"github.com/angelmondragon/gearmarket-backend/pkg/firebase"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/migrate"
	"github.com/angelmondragon/gearmarket-backend/pkg/redis"
)

// Backends holds the storage clients and the repositories built on them for
// the configured store backend.
type Backends struct {
	DB       *db.Client
	Redis    *redis.Client
	Firebase *firebase.App

	Notifications notifications.Repository
	Watcher       notifications.Watcher
	Preferences   preferences.Repository
	Items         items.StatusReader
	Resolver      delivery.RecipientResolver
}

// Options controls which optional clients Open must have.
type Options struct {
	RequireRedis bool
}

// Open connects the clients the configuration asks for. On error every client
// already opened is closed.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (_ *Backends, err error) {
	b := &Backends{}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	if cfg.Redis.Enabled() || opts.RequireRedis {
		if b.Redis, err = redis.New(ctx, cfg.Redis, logg); err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
	}

	if cfg.Firebase.Configured() {
		if b.Firebase, err = firebase.New(ctx, cfg.Firebase, logg); err != nil {
			return nil, fmt.Errorf("bootstrap firebase: %w", err)
		}
	}

	switch {
	case cfg.Store.UsesFirestore():
		if b.Firebase == nil {
			return nil, errors.New("firestore store backend requires firebase configuration")
		}
		fs := b.Firebase.Firestore()
		b.Notifications = notifications.NewFirestoreRepository(fs)
		b.Watcher = notifications.NewFirestoreWatcher(fs)
		b.Preferences = preferences.NewFirestoreRepository(fs)
		b.Items = items.NewFirestoreStatusReader(fs)
	default:
		if b.DB, err = db.New(ctx, cfg.DB, logg); err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err = migrate.MaybeRunDev(ctx, cfg, logg, b.DB); err != nil {
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
		b.Notifications = notifications.NewSQLRepository(b.DB.DB())
		b.Preferences = preferences.NewSQLRepository(b.DB.DB())
		b.Items = items.NewSQLStatusReader(b.DB.DB())
		if b.Redis != nil {
			b.Watcher = notifications.NewRedisWatcher(b.Redis)
		} else {
			b.Watcher = notifications.NewLocalWatcher()
		}
	}

	if b.Firebase != nil {
		b.Resolver = delivery.NewRecipientResolver(b.Firebase.Auth())
	} else {
		b.Resolver = delivery.NewRecipientResolver(nil)
	}
	return b, nil
}

// Firestore returns the Firestore client when Firebase is configured.
func (b *Backends) Firestore() *firestore.Client {
	if b == nil || b.Firebase == nil {
		return nil
	}
	return b.Firebase.Firestore()
}

// Pingers lists every opened client for readiness checks.
func (b *Backends) Pingers() map[string]func(context.Context) error {
	out := map[string]func(context.Context) error{}
	if b.DB != nil {
		out["database"] = b.DB.Ping
	}
	if b.Redis != nil {
		out["redis"] = b.Redis.Ping
	}
	if b.Firebase != nil {
		out["firebase"] = b.Firebase.Ping
	}
	return out
}

// Close releases every opened client.
func (b *Backends) Close() error {
	if b == nil {
		return nil
	}
	var err error
	if b.Firebase != nil {
		err = multierr.Append(err, b.Firebase.Close())
	}
	if b.Redis != nil {
		err = multierr.Append(err, b.Redis.Close())
	}
	if b.DB != nil {
		err = multierr.Append(err, b.DB.Close())
	}
	return err
}

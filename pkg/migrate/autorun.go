package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/db"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// MaybeRunDev brings a dev SQL database up to the embedded schema when
// GEARMARKET_AUTO_MIGRATE is set. Production schemas only move via cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.Store.UsesSQL() || !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	current, err := Version(ctx, sqlDB, cfg.DB.Driver)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	pending, err := Pending(current)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"driver":         cfg.DB.Driver,
		"schema_version": current,
		"pending":        len(pending),
	})
	if len(pending) == 0 {
		logg.Debug(ctx, "migrate.autorun_up_to_date")
		return nil
	}

	logg.Info(ctx, "migrate.autorun_start")
	if err := Run(ctx, sqlDB, cfg.DB.Driver, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "migrate.autorun_done")
	return nil
}

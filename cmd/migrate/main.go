package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/db"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|pending|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "on-disk migrations directory for create and validate")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Authoring commands work from a checkout without any env configured.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Store.UsesSQL() {
		return fmt.Errorf("store backend %q has no schema to migrate", cfg.Store.Backend)
	}

	logg := logger.New(logger.Options{
		ServiceName: "gearmarket-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"driver": cfg.DB.Driver,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}

	if err := dispatch(ctx, sqlDB, cfg.DB.Driver, opts); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.completed")
	return nil
}

func dispatch(ctx context.Context, sqlDB *sql.DB, driver string, opts options) error {
	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, driver, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, driver, opts.version)
	case "pending":
		current, err := migrate.Version(ctx, sqlDB, driver)
		if err != nil {
			return err
		}
		pending, err := migrate.Pending(current)
		if err != nil {
			return err
		}
		fmt.Printf("schema at %d, %d pending\n", current, len(pending))
		for _, f := range pending {
			fmt.Printf("  %d_%s\n", f.Version, f.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown command")
	}
}

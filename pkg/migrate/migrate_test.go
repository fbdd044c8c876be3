package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	if err := Run(ctx, sqlDB, "sqlite", "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	for _, table := range []string{"notifications", "notification_settings", "items"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s after up", table)
		}
	}

	version, err := Version(ctx, sqlDB, "sqlite")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != 20250301090200 {
		t.Fatalf("unexpected version %d", version)
	}

	if err := MigrateToVersion(ctx, sqlDB, "sqlite", "20250301090000"); err != nil {
		t.Fatalf("migrate down to first version: %v", err)
	}
	if conn.Migrator().HasTable("items") {
		t.Fatal("expected items table to be dropped")
	}
	if !conn.Migrator().HasTable("notifications") {
		t.Fatal("expected notifications table to survive")
	}
}

func TestCreateAndValidateDir(t *testing.T) {
	dir := t.TempDir()
	first, err := CreateSQLMigration(dir, "Add Read Index!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Dir(first) != dir || !strings.HasSuffix(first, "_add_read_index.sql") {
		t.Fatalf("unexpected path %s", first)
	}
	second, err := CreateSQLMigration(dir, "add read index")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second == first {
		t.Fatal("expected a bumped version for the second migration")
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- nothing"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestValidateDirRequiresGuardedDDL(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nCREATE TABLE items (id TEXT);\n-- +goose Down\nDROP TABLE IF EXISTS items;\n"
	if err := os.WriteFile(filepath.Join(dir, "20250401000000_items.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "IF NOT EXISTS") {
		t.Fatalf("expected guard error, got %v", err)
	}
}

func TestPending(t *testing.T) {
	all, err := Embedded()
	if err != nil {
		t.Fatalf("embedded: %v", err)
	}
	if len(all) != 3 || all[0].Name != "create_notifications" {
		t.Fatalf("unexpected embedded list %+v", all)
	}
	pending, err := Pending(20250301090000)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].Version != 20250301090100 {
		t.Fatalf("unexpected pending %+v", pending)
	}
}

func TestDialect(t *testing.T) {
	if Dialect("SQLite") != "sqlite3" || Dialect("") != "postgres" {
		t.Fatal("unexpected dialect mapping")
	}
}

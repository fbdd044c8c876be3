package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestPingAndSQLHandle(t *testing.T) {
	client := &Client{conn: newTestDB(t)}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if _, err := client.SQL(); err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if client.DB() == nil {
		t.Fatal("expected gorm handle")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected error for missing dsn")
	}
	if _, err := New(context.Background(), config.DBConfig{DSN: "x", Driver: "mysql"}, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestDriverNameDefaultsToPostgres(t *testing.T) {
	if got := driverName(config.DBConfig{}); got != DriverPostgres {
		t.Fatalf("expected postgres default, got %q", got)
	}
	if got := driverName(config.DBConfig{Driver: " Postgres "}); got != DriverPostgres {
		t.Fatalf("expected normalized driver, got %q", got)
	}
}

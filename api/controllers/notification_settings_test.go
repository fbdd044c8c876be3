package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/gearmarket-backend/api/middleware"
	"github.com/angelmondragon/gearmarket-backend/internal/preferences"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
)

type testPreferencesService struct {
	getFn    func(ctx context.Context, userID string) (*preferences.Preferences, error)
	updateFn func(ctx context.Context, userID string, params preferences.UpdateParams) (*preferences.Preferences, error)
}

func (s *testPreferencesService) Get(ctx context.Context, userID string) (*preferences.Preferences, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return preferences.Defaults(userID), nil
}

func (s *testPreferencesService) Update(ctx context.Context, userID string, params preferences.UpdateParams) (*preferences.Preferences, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, userID, params)
	}
	return preferences.Defaults(userID), nil
}

func TestGetNotificationSettingsDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notification-settings", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	GetNotificationSettings(&testPreferencesService{}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data preferences.Preferences `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.UserID != "user-1" {
		t.Fatalf("unexpected user %q", envelope.Data.UserID)
	}
}

func TestUpdateNotificationSettingsAppliesPartialBody(t *testing.T) {
	var got preferences.UpdateParams
	svc := &testPreferencesService{
		updateFn: func(ctx context.Context, userID string, params preferences.UpdateParams) (*preferences.Preferences, error) {
			got = params
			prefs := preferences.Defaults(userID)
			prefs.NewMessage = *params.NewMessage
			return prefs, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notification-settings", strings.NewReader(`{"newMessage":false}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	UpdateNotificationSettings(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.NewMessage == nil || *got.NewMessage {
		t.Fatalf("expected newMessage=false, got %+v", got)
	}
	if got.TransactionUpdate != nil {
		t.Fatal("absent fields must stay nil")
	}
}

func TestUpdateNotificationSettingsRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notification-settings", strings.NewReader(`{"smsEnabled":true}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	resp := httptest.NewRecorder()
	UpdateNotificationSettings(&testPreferencesService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetNotificationSettingsRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notification-settings", nil)
	resp := httptest.NewRecorder()
	GetNotificationSettings(&testPreferencesService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	ok := HealthReady(cfg, testLogger(), map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { return nil }),
		"redis": nil,
	})
	resp := httptest.NewRecorder()
	ok(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-GearMarket-Env") != "dev" {
		t.Fatal("expected env header")
	}

	failing := HealthReady(cfg, testLogger(), map[string]Pinger{
		"db": pingerFunc(func(context.Context) error { return errors.New("down") }),
	})
	resp = httptest.NewRecorder()
	failing(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"db":"unavailable"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

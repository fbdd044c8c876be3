package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/gearmarket-backend/pkg/auth"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "gearmarket"}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := mintTestToken(t, "user-1", time.Now().Add(-2*time.Hour))
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	token := mintTestToken(t, "user-1", time.Now())

	var captured Principal
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.UserID != "user-1" {
		t.Fatalf("expected user-1 in context got %q", captured.UserID)
	}
	if captured.ExpiresAt.IsZero() || !captured.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future token expiry, got %v", captured.ExpiresAt)
	}
}

func TestAuthAcceptsQueryTokenForStreams(t *testing.T) {
	token := mintTestToken(t, "user-2", time.Now())

	var captured string
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/stream?access_token="+token, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != "user-2" {
		t.Fatalf("expected user-2 in context got %q", captured)
	}
}

func TestWithUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(nil, "user-3") //nolint:staticcheck
	if got := UserIDFromContext(ctx); got != "user-3" {
		t.Fatalf("expected user-3 got %q", got)
	}
	if got := UserIDFromContext(nil); got != "" { //nolint:staticcheck
		t.Fatalf("expected empty user id got %q", got)
	}
}

func mintTestToken(t *testing.T, userID string, now time.Time) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, now, userID, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

package auth

import (
	"testing"
	"time"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "gearmarket"}
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, "firebase-uid-1", time.Hour)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID() != "firebase-uid-1" {
		t.Fatalf("expected subject firebase-uid-1, got %q", claims.UserID())
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestParseAccessTokenRejectsWrongIssuerAndExpiry(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "gearmarket"}

	token, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "someone-else"}, time.Now(), "u1", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}

	expired, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), "u1", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, expired); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseAccessTokenRequiresSubject(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected missing subject to fail")
	}
}

func TestMintRequiresSecretAndUser(t *testing.T) {
	if _, err := MintAccessToken(config.JWTConfig{}, time.Now(), "u1", time.Hour); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s"}, time.Now(), " ", time.Hour); err == nil {
		t.Fatal("expected missing user to fail")
	}
}

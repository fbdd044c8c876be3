package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("GEARMARKET_TEST_VALUE", "  console ")
	if got := Get("GEARMARKET_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("GEARMARKET_TEST_VALUE", "   ")
	if got := Get("GEARMARKET_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("PORT", "")
	if got := Port("8080"); got != "8080" {
		t.Fatalf("expected configured port, got %q", got)
	}
	t.Setenv("PORT", "9090")
	if got := Port("8080"); got != "9090" {
		t.Fatalf("expected platform port, got %q", got)
	}
}

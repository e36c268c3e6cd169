package env

import "testing"

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("AUTOPAY_TEST_VALUE", "   ")
	if got := Get("AUTOPAY_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("AUTOPAY_TEST_VALUE", "set")
	if got := Get("AUTOPAY_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("AUTOPAY_TEST_FLAG", "true")
	if !Bool("AUTOPAY_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("AUTOPAY_TEST_FLAG", "nope")
	if Bool("AUTOPAY_TEST_FLAG", false) {
		t.Fatal("invalid value should use fallback")
	}
}

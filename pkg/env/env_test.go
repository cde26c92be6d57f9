package env

import "testing"

func TestGetFallsBackWhenUnset(t *testing.T) {
	if got := Get("MARKETPOINT_TEST_UNSET", "json"); got != "json" {
		t.Fatalf("got %q", got)
	}
}

func TestGetReturnsValue(t *testing.T) {
	t.Setenv("MARKETPOINT_TEST_SET", "console")
	if got := Get("MARKETPOINT_TEST_SET", "json"); got != "console" {
		t.Fatalf("got %q", got)
	}
}

func TestGetTreatsBlankAsUnset(t *testing.T) {
	t.Setenv("MARKETPOINT_TEST_BLANK", "   ")
	if got := Get("MARKETPOINT_TEST_BLANK", "json"); got != "json" {
		t.Fatalf("got %q", got)
	}
}

package config

import (
	"testing"
	"time"
)

func TestBoolEnvOrDefault(t *testing.T) {
	cases := map[string]bool{
		"":      true,
		"true":  true,
		"On":    true,
		"1":     true,
		"false": false,
		"NO":    false,
		" 0 ":   false,
		"maybe": true,
	}
	for val, want := range cases {
		t.Setenv("BOOL_TEST", val)
		if got := boolEnvOrDefault("BOOL_TEST", true); got != want {
			t.Fatalf("boolEnvOrDefault(%q) = %v, want %v", val, got, want)
		}
	}
}

func TestIntEnvOrDefault(t *testing.T) {
	for val, want := range map[string]int{"": 3, "7": 7, "0": 3, "-2": 3, "x": 3} {
		t.Setenv("INT_TEST", val)
		if got := intEnvOrDefault("INT_TEST", 3); got != want {
			t.Fatalf("intEnvOrDefault(%q) = %d, want %d", val, got, want)
		}
	}
}

func TestDurationEnvAcceptsSeconds(t *testing.T) {
	cases := map[string]time.Duration{
		"":      time.Minute,
		"90":    90 * time.Second,
		"2m":    2 * time.Minute,
		"0":     time.Minute,
		"-5s":   time.Minute,
		"later": time.Minute,
	}
	for val, want := range cases {
		t.Setenv("DURATION_TEST", val)
		if got := durationEnvOrDefault("DURATION_TEST", time.Minute); got != want {
			t.Fatalf("durationEnvOrDefault(%q) = %s, want %s", val, got, want)
		}
	}
}

func TestEnvOrDefaultTrims(t *testing.T) {
	t.Setenv("STRING_TEST", "  ")
	if got := envOrDefault("STRING_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	t.Setenv("STRING_TEST", " value ")
	if got := envOrDefault("STRING_TEST", "fallback"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}

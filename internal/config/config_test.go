package config

import (
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SATTI_LISTEN_ADDR", ":7105")
	t.Setenv("SATTI_API_KEY", "secret-key")
	t.Setenv("SATTI_RATE_LIMIT_PER_MIN", "42")
	t.Setenv("SATTI_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SATTI_TIMING_CAPTURE_MIN", "5ms")
	t.Setenv("SATTI_TIMING_CAPTURE_MAX", "10ms")
	t.Setenv("SATTI_FAIL_SPLIT_PRE", "0.5")
	t.Setenv("SATTI_EVENTS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":7105" {
		t.Errorf("listen addr = %q, want :7105", cfg.ListenAddr)
	}
	if cfg.APIKey != "secret-key" {
		t.Errorf("api key = %q, want secret-key", cfg.APIKey)
	}
	if cfg.RateLimitPerMin != 42 {
		t.Errorf("rate limit = %d, want 42", cfg.RateLimitPerMin)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != len(wantOrigins) {
		t.Fatalf("origins = %v, want %v", cfg.AllowedOrigins, wantOrigins)
	}
	for i, origin := range wantOrigins {
		if cfg.AllowedOrigins[i] != origin {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
	if cfg.Timing.CaptureDuration.Min != 5*time.Millisecond || cfg.Timing.CaptureDuration.Max != 10*time.Millisecond {
		t.Errorf("capture range = %v, want 5ms..10ms", cfg.Timing.CaptureDuration)
	}
	if cfg.Timing.FailSplitPre != 0.5 {
		t.Errorf("fail split pre = %v, want 0.5", cfg.Timing.FailSplitPre)
	}
	if cfg.EventsEnabled {
		t.Error("events should be disabled")
	}
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	cfg := Default()
	cfg.Timing.CommandSetup = DelayRange{Min: 2 * time.Second, Max: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted delay range")
	}
}

func TestValidateRejectsBadFailSplit(t *testing.T) {
	cfg := Default()
	cfg.Timing.FailSplitPost = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for failure split above 1")
	}
}

func TestValidateRejectsBadTileTemplate(t *testing.T) {
	cfg := Default()
	cfg.TileURLTemplate = "https://tiles.example/%d/%d.png"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for tile template missing a verb")
	}
}

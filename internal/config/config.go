// Package config assembles the simulator configuration from built-in
// defaults, an optional .env file, and SATTI_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DelayRange bounds a uniformly sampled stage delay.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// TimingConfig holds the per-stage delay ranges of the command lifecycle.
// The defaults mirror the nominal contact/setup/capture timings; tests
// override them with compressed values.
type TimingConfig struct {
	// ContactWindowWait delays QUEUED -> ACKED (waiting for a contact window).
	ContactWindowWait DelayRange
	// CommandSetup delays ACKED -> CAPTURING (onboard validation and prep).
	CommandSetup DelayRange
	// CaptureDuration delays CAPTURING -> terminal (acquisition itself).
	CaptureDuration DelayRange

	// FailSplitPre and FailSplitPost weight the client-supplied
	// fail_probability across the two failure checkpoints. They are a
	// documented approximation and are not required to sum to 1.
	FailSplitPre  float64
	FailSplitPost float64
}

// Config is the full server configuration.
type Config struct {
	ListenAddr  string
	MetricsAddr string

	DataDir     string
	AuditDBPath string // empty disables the audit trail

	APIKey          string
	JWTSecret       string // empty disables bearer-token auth
	RateLimitPerMin int    // <=0 disables the limiter
	AllowedOrigins  []string

	EventsEnabled bool
	NATSPort      int // -1 picks a random free port

	TileURLTemplate string // fmt template with zoom/x/y verbs
	TileTimeout     time.Duration

	SeedOnBoot bool

	Timing TimingConfig
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      ":6005",
		MetricsAddr:     ":9090",
		DataDir:         "data",
		AuditDBPath:     "data/audit.db",
		APIKey:          "change-me",
		RateLimitPerMin: 600,
		AllowedOrigins:  []string{"http://localhost:6005", "http://127.0.0.1:6005"},
		EventsEnabled:   true,
		NATSPort:        -1,
		TileURLTemplate: "https://tile.openstreetmap.org/%d/%d/%d.png",
		TileTimeout:     8 * time.Second,
		Timing: TimingConfig{
			ContactWindowWait: DelayRange{Min: 700 * time.Millisecond, Max: 1800 * time.Millisecond},
			CommandSetup:      DelayRange{Min: 600 * time.Millisecond, Max: 1600 * time.Millisecond},
			CaptureDuration:   DelayRange{Min: 1500 * time.Millisecond, Max: 3800 * time.Millisecond},
			FailSplitPre:      0.6,
			FailSplitPost:     0.4,
		},
	}
}

// Load builds the configuration: defaults, then .env (if present), then
// environment overrides, then validation.
func Load() (*Config, error) {
	// Missing .env is not an error; explicit environment always wins
	// because godotenv does not overwrite existing variables.
	_ = godotenv.Load()

	cfg := Default()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.ListenAddr, "SATTI_LISTEN_ADDR")
	setString(&cfg.MetricsAddr, "SATTI_METRICS_ADDR")
	setString(&cfg.DataDir, "SATTI_DATA_DIR")
	setString(&cfg.AuditDBPath, "SATTI_AUDIT_DB")
	setString(&cfg.APIKey, "SATTI_API_KEY")
	setString(&cfg.JWTSecret, "SATTI_JWT_SECRET")
	setInt(&cfg.RateLimitPerMin, "SATTI_RATE_LIMIT_PER_MIN")
	setBool(&cfg.EventsEnabled, "SATTI_EVENTS_ENABLED")
	setInt(&cfg.NATSPort, "SATTI_NATS_PORT")
	setString(&cfg.TileURLTemplate, "SATTI_TILE_URL")
	setDuration(&cfg.TileTimeout, "SATTI_TILE_TIMEOUT")
	setBool(&cfg.SeedOnBoot, "SATTI_SEED_ON_BOOT")

	if val := os.Getenv("SATTI_ALLOWED_ORIGINS"); val != "" {
		var origins []string
		for _, origin := range strings.Split(val, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.AllowedOrigins = origins
	}

	setDuration(&cfg.Timing.ContactWindowWait.Min, "SATTI_TIMING_CONTACT_MIN")
	setDuration(&cfg.Timing.ContactWindowWait.Max, "SATTI_TIMING_CONTACT_MAX")
	setDuration(&cfg.Timing.CommandSetup.Min, "SATTI_TIMING_SETUP_MIN")
	setDuration(&cfg.Timing.CommandSetup.Max, "SATTI_TIMING_SETUP_MAX")
	setDuration(&cfg.Timing.CaptureDuration.Min, "SATTI_TIMING_CAPTURE_MIN")
	setDuration(&cfg.Timing.CaptureDuration.Max, "SATTI_TIMING_CAPTURE_MAX")
	setFloat(&cfg.Timing.FailSplitPre, "SATTI_FAIL_SPLIT_PRE")
	setFloat(&cfg.Timing.FailSplitPost, "SATTI_FAIL_SPLIT_POST")
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.TileURLTemplate != "" && strings.Count(c.TileURLTemplate, "%d") != 3 {
		return fmt.Errorf("tile URL template must contain three %%d verbs (zoom, x, y)")
	}
	if c.TileTimeout <= 0 {
		return fmt.Errorf("tile timeout must be positive")
	}
	return c.Timing.Validate()
}

// Validate checks the timing ranges and failure split weights.
func (t TimingConfig) Validate() error {
	for _, r := range []struct {
		name string
		r    DelayRange
	}{
		{"contact window wait", t.ContactWindowWait},
		{"command setup", t.CommandSetup},
		{"capture duration", t.CaptureDuration},
	} {
		if r.r.Min < 0 {
			return fmt.Errorf("%s: minimum delay cannot be negative", r.name)
		}
		if r.r.Max < r.r.Min {
			return fmt.Errorf("%s: maximum delay %v below minimum %v", r.name, r.r.Max, r.r.Min)
		}
	}
	for _, w := range []struct {
		name string
		v    float64
	}{
		{"pre-capture failure split", t.FailSplitPre},
		{"post-capture failure split", t.FailSplitPost},
	} {
		if w.v < 0 || w.v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", w.name, w.v)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(dst *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*dst = parsed
		}
	}
}

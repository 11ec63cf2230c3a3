package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeclock/internal/platform/config"
)

func TestNewUsesDefaultsWhenNoProtocolFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Protocol.RhythmCheckInterval() != 2*time.Minute {
		t.Fatalf("default rhythm check interval should be 2m, got %s", cfg.Protocol.RhythmCheckInterval())
	}
	if cfg.Protocol.AdultMaxJoules != 200 {
		t.Fatalf("default adult max joules should be 200, got %.0f", cfg.Protocol.AdultMaxJoules)
	}
}

func TestNewOverridesFromProtocolYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "rhythm_check_interval_ms: 90000\nadult_initial_joules: 150\nadult_max_joules: 360\n"
	if err := os.WriteFile(filepath.Join(dir, "protocol.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write protocol.yaml: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Protocol.RhythmCheckIntervalMS != 90000 {
		t.Fatalf("expected override 90000, got %d", cfg.Protocol.RhythmCheckIntervalMS)
	}
	if cfg.Protocol.AdultInitialJoules != 150 || cfg.Protocol.AdultMaxJoules != 360 {
		t.Fatalf("expected energy overrides, got %+v", cfg.Protocol)
	}
	// untouched keys keep defaults
	if cfg.Protocol.EpinephrineIntervalMS != 180000 {
		t.Fatalf("expected default epi interval, got %d", cfg.Protocol.EpinephrineIntervalMS)
	}
}

func TestNewRejectsInvalidProtocol(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "rhythm_check_interval_ms: 1000\npre_shock_alert_ms: 5000\n"
	if err := os.WriteFile(filepath.Join(dir, "protocol.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write protocol.yaml: %v", err)
	}
	if _, err := config.New(dir); err == nil {
		t.Fatalf("alert advance longer than the cycle must be rejected")
	}
}

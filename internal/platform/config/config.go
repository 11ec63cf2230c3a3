package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Protocol carries every tunable timing window and energy bound of the
// resuscitation algorithm. Values are milliseconds and joules so the file is
// unambiguous to clinical reviewers.
type Protocol struct {
	RhythmCheckIntervalMS int     `yaml:"rhythm_check_interval_ms"`
	EpinephrineIntervalMS int     `yaml:"epinephrine_interval_ms"`
	PreShockAlertMS       int     `yaml:"pre_shock_alert_ms"`
	SnapshotIntervalMS    int     `yaml:"snapshot_interval_ms"`
	AdultInitialJoules    float64 `yaml:"adult_initial_joules"`
	AdultMaxJoules        float64 `yaml:"adult_max_joules"`
	PediatricCapJoules    float64 `yaml:"pediatric_cap_joules"`
}

type Config struct {
	DataPath string
	DBPath   string
	Protocol Protocol
}

func DefaultProtocol() Protocol {
	return Protocol{
		RhythmCheckIntervalMS: 120_000,
		EpinephrineIntervalMS: 180_000,
		PreShockAlertMS:       15_000,
		SnapshotIntervalMS:    5_000,
		AdultInitialJoules:    120,
		AdultMaxJoules:        200,
		PediatricCapJoules:    360,
	}
}

// New builds a Config rooted at dataPath. A protocol.yaml in the data
// directory overrides defaults; an absent file is not an error.
func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	cfg := Config{
		DataPath: dataPath,
		DBPath:   filepath.Join(dataPath, ".codeclock", "codeclock.db"),
		Protocol: DefaultProtocol(),
	}
	raw, err := os.ReadFile(filepath.Join(dataPath, "protocol.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read protocol config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg.Protocol); err != nil {
		return Config{}, fmt.Errorf("unmarshal protocol config: %w", err)
	}
	if err := cfg.Protocol.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p Protocol) Validate() error {
	if p.RhythmCheckIntervalMS <= 0 {
		return fmt.Errorf("rhythm_check_interval_ms must be positive")
	}
	if p.EpinephrineIntervalMS <= 0 {
		return fmt.Errorf("epinephrine_interval_ms must be positive")
	}
	if p.PreShockAlertMS < 0 || p.PreShockAlertMS > p.RhythmCheckIntervalMS {
		return fmt.Errorf("pre_shock_alert_ms must be within the rhythm check interval")
	}
	if p.AdultInitialJoules <= 0 || p.AdultMaxJoules < p.AdultInitialJoules {
		return fmt.Errorf("adult joules must escalate from a positive initial value")
	}
	if p.PediatricCapJoules <= 0 {
		return fmt.Errorf("pediatric_cap_joules must be positive")
	}
	return nil
}

func (p Protocol) RhythmCheckInterval() time.Duration {
	return time.Duration(p.RhythmCheckIntervalMS) * time.Millisecond
}

func (p Protocol) EpinephrineInterval() time.Duration {
	return time.Duration(p.EpinephrineIntervalMS) * time.Millisecond
}

func (p Protocol) PreShockAlertAdvance() time.Duration {
	return time.Duration(p.PreShockAlertMS) * time.Millisecond
}

func (p Protocol) SnapshotInterval() time.Duration {
	return time.Duration(p.SnapshotIntervalMS) * time.Millisecond
}

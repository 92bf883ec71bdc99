// File: config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/lguibr/troupe/supervisor"
	"github.com/lguibr/troupe/troupe"
)

// Config holds all configurable runtime parameters.
type Config struct {
	// Mailboxes
	MailboxCapacity int    // Envelopes buffered per actor (0 = unbounded)
	OverflowPolicy  string // block | drop_newest | reject

	// Supervision
	MaxRestarts   int           // Restart budget per window (0 = unlimited)
	RestartWindow time.Duration // Sliding window for the restart budget

	// Health monitoring
	HealthInterval     time.Duration // Time between health sweeps
	UnhealthyThreshold int           // Consecutive unhealthy reports before action
	RestartOnUnhealthy bool          // Treat persistent unhealth as failure

	// Observability
	ListenAddr  string // Address of the event-stream server ("" = disabled)
	JournalPath string // Path of the bbolt event journal ("" = disabled)
	HistorySize int    // Events retained by the in-memory monitor
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		// Mailboxes
		MailboxCapacity: troupe.DefaultMailboxCapacity,
		OverflowPolicy:  "block",

		// Supervision
		MaxRestarts:   5,
		RestartWindow: time.Minute,

		// Health monitoring
		HealthInterval:     10 * time.Second,
		UnhealthyThreshold: 3,
		RestartOnUnhealthy: true,

		// Observability
		ListenAddr:  ":3001",
		JournalPath: "",
		HistorySize: 1000,
	}
}

// rawConfig is the YAML shape. Fields are pointers so that absent keys
// keep their defaults; durations are strings in Go duration syntax
// ("30s", "1m") because yaml.v2 cannot decode time.Duration itself.
type rawConfig struct {
	MailboxCapacity    *int    `yaml:"mailboxCapacity"`
	OverflowPolicy     *string `yaml:"overflowPolicy"`
	MaxRestarts        *int    `yaml:"maxRestarts"`
	RestartWindow      *string `yaml:"restartWindow"`
	HealthInterval     *string `yaml:"healthInterval"`
	UnhealthyThreshold *int    `yaml:"unhealthyThreshold"`
	RestartOnUnhealthy *bool   `yaml:"restartOnUnhealthy"`
	ListenAddr         *string `yaml:"listenAddr"`
	JournalPath        *string `yaml:"journalPath"`
	HistorySize        *int    `yaml:"historySize"`
}

// UnmarshalYAML implements yaml.Unmarshaler, layering the document over
// whatever values the receiver already holds.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw rawConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.MailboxCapacity != nil {
		c.MailboxCapacity = *raw.MailboxCapacity
	}
	if raw.OverflowPolicy != nil {
		c.OverflowPolicy = *raw.OverflowPolicy
	}
	if raw.MaxRestarts != nil {
		c.MaxRestarts = *raw.MaxRestarts
	}
	if raw.UnhealthyThreshold != nil {
		c.UnhealthyThreshold = *raw.UnhealthyThreshold
	}
	if raw.RestartOnUnhealthy != nil {
		c.RestartOnUnhealthy = *raw.RestartOnUnhealthy
	}
	if raw.ListenAddr != nil {
		c.ListenAddr = *raw.ListenAddr
	}
	if raw.JournalPath != nil {
		c.JournalPath = *raw.JournalPath
	}
	if raw.HistorySize != nil {
		c.HistorySize = *raw.HistorySize
	}
	for _, d := range []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"restartWindow", raw.RestartWindow, &c.RestartWindow},
		{"healthInterval", raw.HealthInterval, &c.HealthInterval},
	} {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

// Load reads a YAML file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.overflowPolicy(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) overflowPolicy() (troupe.OverflowPolicy, error) {
	switch c.OverflowPolicy {
	case "", "block":
		return troupe.Block, nil
	case "drop_newest":
		return troupe.DropNewest, nil
	case "reject":
		return troupe.Reject, nil
	default:
		return troupe.Block, fmt.Errorf("unknown overflow policy %q", c.OverflowPolicy)
	}
}

// MailboxConfig converts the mailbox settings. An unknown policy name
// falls back to Block; Load rejects it up front.
func (c Config) MailboxConfig() troupe.MailboxConfig {
	policy, _ := c.overflowPolicy()
	return troupe.MailboxConfig{
		Capacity: c.MailboxCapacity,
		Policy:   policy,
	}
}

// Intensity converts the supervision settings.
func (c Config) Intensity() supervisor.RestartIntensity {
	return supervisor.RestartIntensity{
		MaxRestarts: c.MaxRestarts,
		Window:      c.RestartWindow,
	}
}

// HealthConfig converts the health monitoring settings.
func (c Config) HealthConfig() supervisor.HealthConfig {
	return supervisor.HealthConfig{
		CheckInterval:      c.HealthInterval,
		UnhealthyThreshold: c.UnhealthyThreshold,
		RestartOnUnhealthy: c.RestartOnUnhealthy,
	}
}

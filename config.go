package dice

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelAuto selects the model from the IDs in the configuration ROM of the unit.
const ModelAuto = "auto"

// Config is the configuration of a session with a unit.
type Config struct {
	// FwDevice is the character device of the node, such as /dev/fw1. Empty to take it from the
	// hwdep device.
	FwDevice string `yaml:"fw_device,omitempty"`
	// HwdepDevice is the hwdep device of the ALSA dice driver, such as /dev/snd/hwC1D0.
	HwdepDevice string `yaml:"hwdep_device"`
	// Model is ModelAuto or one of ModelNames.
	Model             string `yaml:"model"`
	TimeoutMs         int    `yaml:"timeout_ms"`
	MeasureIntervalMs int    `yaml:"measure_interval_ms"`
	// TraceFile receives CBOR encoded trace events when not empty.
	TraceFile string `yaml:"trace_file,omitempty"`
	LogLevel  string `yaml:"log_level"`
}

// DefaultConfig returns the configuration for the first sound card.
func DefaultConfig() *Config {
	return &Config{
		HwdepDevice:       "/dev/snd/hwC0D0",
		Model:             ModelAuto,
		TimeoutMs:         DefaultTimeoutMs,
		MeasureIntervalMs: 100,
		LogLevel:          "info",
	}
}

// ParseConfig parses YAML over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfig reads the configuration in the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Marshal encodes the configuration in YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the values of the configuration.
func (c *Config) Validate() error {
	if c.Model != ModelAuto && !slices.Contains(ModelNames, strings.ToLower(c.Model)) {
		return fmt.Errorf("unsupported model: %s", c.Model)
	}

	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout should be positive: %d", c.TimeoutMs)
	}

	if c.MeasureIntervalMs <= 0 {
		return fmt.Errorf("measure interval should be positive: %d", c.MeasureIntervalMs)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel returns the level of LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return level, nil
}

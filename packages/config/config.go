// Package config loads the optional verdict.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "verdict.yaml"

// Config represents the verdict configuration. Pointer-typed bools
// distinguish "unset" from an explicit false.
type Config struct {
	DurationThreshold int    `yaml:"durationThreshold,omitempty"` // milliseconds
	NoColor           *bool  `yaml:"noColor,omitempty"`
	TAP               *bool  `yaml:"tap,omitempty"`
	Durations         *bool  `yaml:"durations,omitempty"`
	History           string `yaml:"history,omitempty"` // path to the run-history database
	ProjectDir        string `yaml:"projectDir,omitempty"`
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetNoColor returns the noColor setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetTAP returns the tap setting, defaulting to false.
func (c *Config) GetTAP() bool {
	return getBool(c.TAP, false)
}

// GetDurations returns the durations setting, defaulting to false.
func (c *Config) GetDurations() bool {
	return getBool(c.Durations, false)
}

// GetDurationThreshold returns the duration threshold, defaulting to zero,
// which lets the reporter apply its own default.
func (c *Config) GetDurationThreshold() time.Duration {
	return time.Duration(c.DurationThreshold) * time.Millisecond
}

// Load reads verdict.yaml from dir. A missing file yields an empty config.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &cfg, nil
}

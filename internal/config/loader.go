package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".proctorscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .proctorscan configuration file.
// Only the fields present in the file override the built-in defaults.
type File struct {
	// Thresholds overrides heuristic parameters. Zero-valued fields are
	// ignored so a file can override a single threshold.
	Thresholds Thresholds `yaml:"thresholds,omitempty"`

	// SampleIPLimit and SampleStudentLimit override report sample caps.
	SampleIPLimit      int `yaml:"sampleIPLimit,omitempty"`
	SampleStudentLimit int `yaml:"sampleStudentLimit,omitempty"`
}

// LoadConfigFile loads threshold overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this based on whether the path was explicitly specified
// by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply merges the file's non-zero overrides into the config.
func (cf *File) Apply(c *Config) {
	if cf.Thresholds.HighWPM > 0 {
		c.Thresholds.HighWPM = cf.Thresholds.HighWPM
	}
	if cf.Thresholds.PasteMinAnswerLength > 0 {
		c.Thresholds.PasteMinAnswerLength = cf.Thresholds.PasteMinAnswerLength
	}
	if cf.Thresholds.PasteMaxTypingEvents > 0 {
		c.Thresholds.PasteMaxTypingEvents = cf.Thresholds.PasteMaxTypingEvents
	}
	if cf.Thresholds.FastAnswerMaxSeconds > 0 {
		c.Thresholds.FastAnswerMaxSeconds = cf.Thresholds.FastAnswerMaxSeconds
	}
	if cf.Thresholds.FastAnswerMinLength > 0 {
		c.Thresholds.FastAnswerMinLength = cf.Thresholds.FastAnswerMinLength
	}
	if cf.SampleIPLimit > 0 {
		c.SampleIPLimit = cf.SampleIPLimit
	}
	if cf.SampleStudentLimit > 0 {
		c.SampleStudentLimit = cf.SampleStudentLimit
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .proctorscan in the current directory
//  3. Look for .proctorscan in the user's home directory
//
// Returns the path to the configuration file, or "" if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

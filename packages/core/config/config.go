package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the stagehand project configuration
type Config struct {
	// Suites lists directories searched for *.suite.yaml manifests when the
	// run command gets no explicit paths.
	Suites []string `yaml:"suites,omitempty"`

	Workdir    string   `yaml:"workdir,omitempty"`
	EnvFile    string   `yaml:"env_file,omitempty"`
	Output     string   `yaml:"output,omitempty"` // console, json, junit, tap
	OutputFile string   `yaml:"output_file,omitempty"`
	Groups     []string `yaml:"groups,omitempty"`

	Pace        float64 `yaml:"pace,omitempty"` // tests per second, 0 = unthrottled
	Bail        *bool   `yaml:"bail,omitempty"`
	MaxFailures int     `yaml:"max_failures,omitempty"`

	Timing   *bool `yaml:"timing,omitempty"`
	Coverage *bool `yaml:"coverage,omitempty"`
	Verbose  *bool `yaml:"verbose,omitempty"`
	NoColor  *bool `yaml:"no_color,omitempty"`

	History HistoryConfig `yaml:"history,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
}

// HistoryConfig controls the sqlite run archive
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	File    string `yaml:"file,omitempty"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	Port int    `yaml:"port,omitempty"`
	File string `yaml:"file,omitempty"`
}

// NotifyConfig controls webhook notifications
type NotifyConfig struct {
	SlackWebhook string `yaml:"slack_webhook,omitempty"`
	TeamsWebhook string `yaml:"teams_webhook,omitempty"`
	On           string `yaml:"on,omitempty"` // always, failure, success, recovery
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetTiming returns the timing setting, defaulting to false
func (c *Config) GetTiming() bool {
	return getBool(c.Timing, false)
}

// GetCoverage returns the coverage setting, defaulting to false
func (c *Config) GetCoverage() bool {
	return getBool(c.Coverage, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetHistoryEnabled returns whether run history is recorded, defaulting to true
func (c *Config) GetHistoryEnabled() bool {
	return getBool(c.History.Enabled, true)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	"stagehand.yaml",
	"stagehand.yml",
	".stagehand.yaml",
	".stagehand.yml",
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if len(other.Suites) > 0 {
		result.Suites = other.Suites
	}
	if other.Workdir != "" {
		result.Workdir = other.Workdir
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if len(other.Groups) > 0 {
		result.Groups = other.Groups
	}
	if other.Pace > 0 {
		result.Pace = other.Pace
	}
	if other.MaxFailures > 0 {
		result.MaxFailures = other.MaxFailures
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Timing != nil {
		result.Timing = other.Timing
	}
	if other.Coverage != nil {
		result.Coverage = other.Coverage
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if other.History.Enabled != nil {
		result.History.Enabled = other.History.Enabled
	}
	if other.History.File != "" {
		result.History.File = other.History.File
	}
	if other.Metrics.Port > 0 {
		result.Metrics.Port = other.Metrics.Port
	}
	if other.Metrics.File != "" {
		result.Metrics.File = other.Metrics.File
	}
	if other.Notify.SlackWebhook != "" {
		result.Notify.SlackWebhook = other.Notify.SlackWebhook
	}
	if other.Notify.TeamsWebhook != "" {
		result.Notify.TeamsWebhook = other.Notify.TeamsWebhook
	}
	if other.Notify.On != "" {
		result.Notify.On = other.Notify.On
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

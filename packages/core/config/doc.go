// Package config handles project configuration loading for stagehand.
//
// It provides functionality for:
//   - Loading configuration from stagehand.yaml or .stagehand.yaml files
//   - Default configuration values
//   - Merging file configuration with command-line overrides
package config

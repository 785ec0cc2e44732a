// Package config provides configuration management for apimetrics-deploy.
package config

import (
	"time"
)

// Config is the root configuration structure.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Deploy  DeployConfig  `mapstructure:"deploy"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig holds APImetrics API connection settings.
type APIConfig struct {
	// API root, e.g. https://client.apimetrics.io/api/2/
	BaseURL string `mapstructure:"base_url"`

	// API key sent as a bearer token
	Key string `mapstructure:"key"`

	// Per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	UserAgent string `mapstructure:"user_agent"`

	// Page size for list calls (0 for the server default)
	PageSize int `mapstructure:"page_size"`
}

// DeployConfig holds the desired deployment state shared by every workflow.
type DeployConfig struct {
	// Minutes between calls
	Frequency int `mapstructure:"frequency"`

	// Keep deployments at locations that are no longer desired
	NoDelete bool `mapstructure:"no_delete"`

	// Regular expression a workflow name must contain
	Name string `mapstructure:"name"`

	// Glob patterns of workflow names to skip
	Exclude []string `mapstructure:"exclude"`

	// Only process workflows with every one of these tags
	Tags []string `mapstructure:"tags"`

	// Ask before changing each workflow
	Interactive bool `mapstructure:"interactive"`

	// Print the plan without applying it
	DryRun bool `mapstructure:"dry_run"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (trace, debug, info, warn, error, fatal, panic)
	Level string `mapstructure:"level"`

	// Log format (json, console)
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Path of a prometheus textfile written after each run (empty to disable)
	Textfile string `mapstructure:"textfile"`
}

package config

import "time"

// Default configuration values.
const (
	// API defaults.
	DefaultBaseURL   = "https://client.apimetrics.io/api/2/"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "apimetrics-deploy"

	// Deploy defaults.
	DefaultFrequency = 10 // minutes

	// Logging defaults.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Deploy: DeployConfig{
			Frequency: DefaultFrequency,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type LoadOptions struct {
	ConfigFile string
	EnvPrefix  string
	Defaults   *Config

	// Overrides are applied last, above file and environment values.
	// Keys use the dotted form, e.g. "deploy.frequency".
	Overrides map[string]any
}

func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := opts.Defaults
	if defaults == nil {
		defaults = Default()
	}
	setViperDefaults(v, defaults)

	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "APIMETRICS"
	}
	v.SetEnvPrefix(opts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DEBUG_LEVEL is honoured for compatibility with the older Python scripts.
	if err := v.BindEnv("logging.level", opts.EnvPrefix+"_LOGGING_LEVEL", "DEBUG_LEVEL"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("apimetrics")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/apimetrics")
		v.AddConfigPath("/etc/apimetrics")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	expandEnvInConfig(v)

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Logging.Level = NormalizeLevel(cfg.Logging.Level)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadFromFile(path string) (*Config, error) {
	return Load(LoadOptions{ConfigFile: path})
}

func LoadWithDefaults() (*Config, error) {
	return Load(LoadOptions{})
}

func setViperDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.key", cfg.API.Key)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.page_size", cfg.API.PageSize)

	v.SetDefault("deploy.frequency", cfg.Deploy.Frequency)
	v.SetDefault("deploy.no_delete", cfg.Deploy.NoDelete)
	v.SetDefault("deploy.name", cfg.Deploy.Name)
	v.SetDefault("deploy.exclude", cfg.Deploy.Exclude)
	v.SetDefault("deploy.tags", cfg.Deploy.Tags)
	v.SetDefault("deploy.interactive", cfg.Deploy.Interactive)
	v.SetDefault("deploy.dry_run", cfg.Deploy.DryRun)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
}

func expandEnvInConfig(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envVar := val[2 : len(val)-1]
			if envVal := os.Getenv(envVar); envVal != "" {
				v.Set(key, envVal)
			}
		}
	}
}

// NormalizeLevel maps Python logging level names and numbers onto zerolog
// level names. Unknown values are returned lowercased for Validate to reject.
func NormalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return DefaultLogLevel
	case "warning", "30":
		return "warn"
	case "critical", "50":
		return "fatal"
	case "10":
		return "debug"
	case "20":
		return "info"
	case "40":
		return "error"
	default:
		return level
	}
}

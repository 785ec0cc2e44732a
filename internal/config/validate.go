package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (e ValidationErrors) Unwrap() error {
	return ErrInvalidConfig
}

func Validate(cfg *Config) error {
	var errs ValidationErrors

	errs = append(errs, validateAPI(&cfg.API)...)
	errs = append(errs, validateDeploy(&cfg.Deploy)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAPI(cfg *APIConfig) ValidationErrors {
	var errs ValidationErrors

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "must be an absolute URL",
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "scheme must be http or https",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout",
			Message: "must be non-negative",
		})
	}

	if cfg.PageSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.page_size",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateDeploy(cfg *DeployConfig) ValidationErrors {
	var errs ValidationErrors

	if cfg.Frequency < 1 {
		errs = append(errs, ValidationError{
			Field:   "deploy.frequency",
			Message: "must be a positive number of minutes",
		})
	}

	if cfg.Name != "" {
		if _, err := regexp.Compile(cfg.Name); err != nil {
			errs = append(errs, ValidationError{
				Field:   "deploy.name",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	for _, pattern := range cfg.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, ValidationError{
				Field:   "deploy.exclude",
				Message: fmt.Sprintf("invalid glob %q: %v", pattern, err),
			})
		}
	}

	if cfg.Interactive && cfg.DryRun {
		errs = append(errs, ValidationError{
			Field:   "deploy.interactive",
			Message: "cannot be combined with dry_run",
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[cfg.Level] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be one of: trace, debug, info, warn, error, fatal, panic",
		})
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'console'",
		})
	}

	return errs
}

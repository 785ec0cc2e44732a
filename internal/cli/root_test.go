package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/APImetrics/apimetrics-deploy/internal/config"
)

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		verbose   bool
		wantLevel zerolog.Level
	}{
		{"info", config.LoggingConfig{Level: "info", Format: "console"}, false, zerolog.InfoLevel},
		{"warn", config.LoggingConfig{Level: "warn", Format: "json"}, false, zerolog.WarnLevel},
		{"verbose wins", config.LoggingConfig{Level: "error", Format: "console"}, true, zerolog.DebugLevel},
		{"unparseable falls back", config.LoggingConfig{Level: "", Format: "console"}, false, zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			setupLogging(&buf, tt.cfg, tt.verbose)
			if got := zerolog.GlobalLevel(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestSetupLogging_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	setupLogging(&buf, config.LoggingConfig{Level: "info", Format: "json"}, false)
	log.Info().Str("location", "aws_us_east").Msg("hello")

	if !strings.Contains(buf.String(), `"location":"aws_us_east"`) {
		t.Errorf("expected JSON log line, got %q", buf.String())
	}
}

func TestVersion(t *testing.T) {
	if !strings.HasPrefix(Version(), "apimetrics-deploy version ") {
		t.Errorf("unexpected version string %q", Version())
	}
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/APImetrics/apimetrics-deploy/internal/config"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=...".
var version = "0.1.0-dev"

// newRootCmd builds the command tree. The root command is the deploy
// command itself.
func newRootCmd() *cobra.Command {
	o := &deployOptions{}

	cmd := &cobra.Command{
		Use:   "apimetrics-deploy [flags] LOC [LOC...]",
		Short: "Deploy APImetrics workflows to a set of locations",
		Long: `apimetrics-deploy makes every selected workflow run from exactly the given
locations at the given frequency.

For each workflow it:
  - removes duplicate deployments at the same location
  - creates deployments for locations that have none
  - updates deployments whose frequency differs
  - deletes deployments at locations no longer listed (unless --no-delete)

Start times are spread across the frequency window so calls from different
locations do not fire at the same moment.

Examples:
  apimetrics-deploy aws_us_east gcp_europe_west
  apimetrics-deploy -f 5 -n '^Checkout' aws_us_east azure_japan
  apimetrics-deploy --dry-run -o yaml aws_us_east

Environment Variables:
  APIMETRICS_API_KEY   API key (or --api-key)
  APIMETRICS_API_BASE_URL  API root (or --base-url)
  DEBUG_LEVEL          Log level`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			o.cfg = cfg
			setupLogging(os.Stderr, cfg.Logging, o.verbose)
			return nil
		},
		RunE: o.run,
	}

	cmd.SetVersionTemplate(Version() + "\n")

	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "config file (default is ./apimetrics.yaml)")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose output")
	o.addFlags(cmd)

	return cmd
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

// setupLogging configures zerolog based on verbosity and config.
func setupLogging(w io.Writer, cfg config.LoggingConfig, verbose bool) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}

	// Pretty console output for interactive use
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// Version returns the version string.
func Version() string {
	return fmt.Sprintf("apimetrics-deploy version %s", version)
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
	"github.com/APImetrics/apimetrics-deploy/internal/config"
	"github.com/APImetrics/apimetrics-deploy/internal/metrics"
	"github.com/APImetrics/apimetrics-deploy/internal/reconcile"
	"github.com/APImetrics/apimetrics-deploy/internal/requestctx"
)

type deployOptions struct {
	configFile string
	verbose    bool

	apiKey  string
	baseURL string

	frequency   int
	interactive bool
	name        string
	noDelete    bool
	exclude     []string
	tags        []string
	dryRun      bool
	output      string
	metricsFile string

	cfg *config.Config
}

func (o *deployOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.apiKey, "api-key", "", "APImetrics API key (or APIMETRICS_API_KEY)")
	f.StringVar(&o.baseURL, "base-url", "", "APImetrics API root URL")
	f.IntVarP(&o.frequency, "frequency", "f", config.DefaultFrequency, "Frequency to make API call (minutes)")
	f.BoolVarP(&o.interactive, "interactive", "i", false, "Interactive mode, ask for each workflow")
	f.StringVarP(&o.name, "name", "n", "", "Only workflows whose name matches this regular expression")
	f.BoolVarP(&o.noDelete, "no-delete", "d", false, "Keep deployments at locations not listed")
	f.StringSliceVarP(&o.exclude, "exclude", "x", nil, "Skip workflows whose name matches this glob (repeatable)")
	f.StringSliceVarP(&o.tags, "tag", "t", nil, "Only workflows carrying this tag (repeatable)")
	f.BoolVar(&o.dryRun, "dry-run", false, "Show what would change without applying")
	f.StringVarP(&o.output, "output", "o", "text", "Dry-run output format: text, json or yaml")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write prometheus metrics to this file after the run")
}

// loadConfig merges the config file and environment with any flags the
// user set explicitly.
func (o *deployOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	overrides := map[string]any{}

	set := func(flag, key string, val any) {
		if flags.Changed(flag) {
			overrides[key] = val
		}
	}
	set("api-key", "api.key", o.apiKey)
	set("base-url", "api.base_url", o.baseURL)
	set("frequency", "deploy.frequency", o.frequency)
	set("interactive", "deploy.interactive", o.interactive)
	set("name", "deploy.name", o.name)
	set("no-delete", "deploy.no_delete", o.noDelete)
	set("exclude", "deploy.exclude", o.exclude)
	set("tag", "deploy.tags", o.tags)
	set("dry-run", "deploy.dry_run", o.dryRun)
	set("metrics-file", "metrics.textfile", o.metricsFile)

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}

	if o.verbose && o.configFile != "" {
		log.Debug().Str("file", o.configFile).Msg("Using config file")
	}
	return cfg, nil
}

func (o *deployOptions) run(cmd *cobra.Command, args []string) error {
	cfg := o.cfg

	if cfg.API.Key == "" {
		return fmt.Errorf("--api-key is required (or set APIMETRICS_API_KEY)")
	}
	if !validOutput(o.output) {
		return fmt.Errorf("unsupported output format %q (want text, json or yaml)", o.output)
	}

	warnDuplicateLocations(args)

	client, err := apimetrics.New(cfg.API.Key,
		apimetrics.WithBaseURL(cfg.API.BaseURL),
		apimetrics.WithTimeout(cfg.API.Timeout),
		apimetrics.WithUserAgent(cfg.API.UserAgent+"/"+version),
	)
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	out := cmd.OutOrStdout()

	var confirmer reconcile.Confirmer
	if cfg.Deploy.Interactive {
		confirmer = newPromptConfirmer(cmd.InOrStdin(), out)
	}

	r, err := reconcile.New(client, reconcile.Options{
		Locations:   args,
		Frequency:   cfg.Deploy.Frequency,
		NoDelete:    cfg.Deploy.NoDelete,
		DryRun:      cfg.Deploy.DryRun,
		NamePattern: cfg.Deploy.Name,
		Exclude:     cfg.Deploy.Exclude,
		Interactive: cfg.Deploy.Interactive,
		Confirmer:   confirmer,
		ListOptions: apimetrics.ListOptions{
			Limit: cfg.API.PageSize,
			Tags:  cfg.Deploy.Tags,
		},
		Out: out,
	})
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx := requestctx.WithRunID(cmd.Context(), runID)

	log.Info().
		Str("run_id", runID).
		Str("api", client.BaseURL()).
		Strs("locations", args).
		Int("frequency", cfg.Deploy.Frequency).
		Bool("no_delete", cfg.Deploy.NoDelete).
		Bool("dry_run", cfg.Deploy.DryRun).
		Msg("Syncing deployments")

	res, runErr := r.Run(ctx)

	metrics.MarkRunFinished(time.Now())
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn().Err(err).Str("file", cfg.Metrics.Textfile).Msg("Failed to write metrics")
		}
	}

	if runErr != nil {
		return runErr
	}

	if cfg.Deploy.DryRun {
		return renderDryRun(out, o.output, res)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Summary: %s\n", res.Summary)
	return nil
}

func warnDuplicateLocations(locations []string) {
	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if seen[loc] {
			log.Warn().Str("location", loc).Msg("Location listed more than once; each entry gets its own deployment")
			continue
		}
		seen[loc] = true
	}
}

func validOutput(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json", "yaml":
		return true
	default:
		return false
	}
}

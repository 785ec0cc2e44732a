package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/APImetrics/apimetrics-deploy/internal/reconcile"
)

var actionMarkers = map[reconcile.ActionType]string{
	reconcile.ActionCreate:    "+",
	reconcile.ActionUpdate:    "~",
	reconcile.ActionDelete:    "-",
	reconcile.ActionKeep:      "!",
	reconcile.ActionUnchanged: "=",
}

func renderDryRun(w io.Writer, format string, res *reconcile.Result) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		return enc.Close()
	default:
		printPlans(w, res)
		return nil
	}
}

func printPlans(w io.Writer, res *reconcile.Result) {
	for _, p := range res.Plans {
		fmt.Fprintf(w, "Workflow %q (%s): %d change(s)\n", p.WorkflowName, p.WorkflowID, p.Mutations())
		for _, a := range p.Actions {
			fmt.Fprintf(w, "  %s %s\n", actionMarkers[a.Type], a)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %s\n", res.Summary)
	fmt.Fprintln(w, "Dry run complete. No changes applied.")
}

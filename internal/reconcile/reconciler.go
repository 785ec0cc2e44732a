// Package reconcile brings APImetrics workflow deployments in line with a
// desired set of locations and a call frequency.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
	"github.com/APImetrics/apimetrics-deploy/internal/metrics"
	"github.com/APImetrics/apimetrics-deploy/internal/requestctx"
)

// DefaultFrequency is the call frequency in minutes used when none is given.
const DefaultFrequency = 10

var ErrNoLocations = errors.New("at least one location is required")

// DeploymentAPI is the subset of the APImetrics API the reconciler drives.
type DeploymentAPI interface {
	ListWorkflows(ctx context.Context, opts apimetrics.ListOptions) ([]apimetrics.Workflow, error)
	ListDeploymentsByWorkflow(ctx context.Context, workflowID string) ([]apimetrics.Deployment, error)
	CreateDeployment(ctx context.Context, req apimetrics.DeploymentRequest) (*apimetrics.Deployment, error)
	UpdateDeployment(ctx context.Context, id string, req apimetrics.DeploymentRequest) (*apimetrics.Deployment, error)
	DeleteDeployment(ctx context.Context, id string) error
}

type Options struct {
	// Locations is the desired location set. Duplicates are kept as given.
	Locations []string
	// Frequency in minutes. Zero means DefaultFrequency.
	Frequency int
	// NoDelete keeps deployments at locations that are no longer desired.
	// Duplicates are removed regardless.
	NoDelete bool
	// DryRun computes plans without calling any mutating endpoint.
	DryRun bool

	NamePattern string
	Exclude     []string
	Interactive bool
	Confirmer   Confirmer

	ListOptions apimetrics.ListOptions

	// Out receives one status line per applied action. Defaults to io.Discard.
	Out io.Writer
	// Shuffle permutes the desired locations. Defaults to an unseeded rand.Shuffle.
	Shuffle ShuffleFunc
}

type Reconciler struct {
	api    DeploymentAPI
	opts   Options
	filter *Filter
	out    io.Writer
}

func New(api DeploymentAPI, opts Options) (*Reconciler, error) {
	if len(opts.Locations) == 0 {
		return nil, ErrNoLocations
	}
	if opts.Frequency == 0 {
		opts.Frequency = DefaultFrequency
	}

	filter, err := NewFilter(opts.NamePattern, opts.Exclude, opts.Interactive, opts.Confirmer)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	return &Reconciler{
		api:    api,
		opts:   opts,
		filter: filter,
		out:    out,
	}, nil
}

// Run reconciles every workflow that passes the filter, one at a time. The
// first API failure stops the run.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	workflows, err := r.api.ListWorkflows(ctx, r.opts.ListOptions)
	if err != nil {
		return res, fmt.Errorf("listing workflows: %w", err)
	}
	log.Debug().Int("workflows", len(workflows)).Msg("Fetched workflows")

	for _, wf := range workflows {
		ok, err := r.filter.ShouldProcess(wf)
		if err != nil {
			return res, fmt.Errorf("confirming workflow %q: %w", wf.Meta.Name, err)
		}
		if !ok {
			log.Debug().Str("workflow", wf.Meta.Name).Msg("Skipping workflow")
			res.Summary.Skipped++
			metrics.RecordWorkflow(metrics.WorkflowSkipped)
			continue
		}

		wfCtx := requestctx.WithWorkflowID(ctx, wf.ID)

		existing, err := r.api.ListDeploymentsByWorkflow(wfCtx, wf.ID)
		if err != nil {
			return res, fmt.Errorf("listing deployments for workflow %q: %w", wf.Meta.Name, err)
		}

		plan, err := r.ReconcileWorkflow(wfCtx, wf, existing)
		if err != nil {
			return res, err
		}

		res.Plans = append(res.Plans, plan)
		res.Summary.Add(plan)
		metrics.RecordWorkflow(metrics.WorkflowProcessed)
	}

	return res, nil
}

// ReconcileWorkflow plans the changes for one workflow and, unless this is a
// dry run, applies them.
func (r *Reconciler) ReconcileWorkflow(ctx context.Context, wf apimetrics.Workflow, existing []apimetrics.Deployment) (*Plan, error) {
	plan := r.Plan(wf, existing)

	log.Debug().
		Str("workflow", wf.Meta.Name).
		Int("existing", len(existing)).
		Int("actions", len(plan.Actions)).
		Int("mutations", plan.Mutations()).
		Bool("dry_run", r.opts.DryRun).
		Msg("Planned workflow")

	if r.opts.DryRun {
		for _, a := range plan.Actions {
			metrics.RecordAction(string(a.Type), metrics.ResultPlanned)
		}
		return plan, nil
	}

	return plan, r.Apply(ctx, plan)
}

// Plan computes the actions for one workflow without touching the API.
//
// Duplicates (a second deployment at an already seen location) are always
// deleted. Desired locations are shuffled and given run delays of
// (i+1)*Gap; a location without a deployment is created, one with a
// different frequency is updated in place, anything else is left alone.
// Deployments at locations no longer desired are deleted, or kept when
// NoDelete is set.
func (r *Reconciler) Plan(wf apimetrics.Workflow, existing []apimetrics.Deployment) *Plan {
	plan := &Plan{WorkflowID: wf.ID, WorkflowName: wf.Meta.Name}
	freq := r.opts.Frequency

	byLocation := make(map[string]apimetrics.Deployment, len(existing))
	for _, dep := range existing {
		loc := dep.Deployment.LocationID
		if _, seen := byLocation[loc]; seen {
			plan.Actions = append(plan.Actions, Action{
				Type:         ActionDelete,
				Reason:       ReasonDuplicate,
				DeploymentID: dep.ID,
				LocationID:   loc,
				Frequency:    dep.Deployment.Frequency,
			})
			continue
		}
		byLocation[loc] = dep
	}

	locations := shuffled(r.opts.Locations, r.opts.Shuffle)
	delays := RunDelays(freq, len(locations))

	for i, loc := range locations {
		dep, ok := byLocation[loc]
		switch {
		case !ok:
			plan.Actions = append(plan.Actions, Action{
				Type:       ActionCreate,
				LocationID: loc,
				Frequency:  freq,
				RunDelay:   delays[i],
			})
		case dep.Deployment.Frequency != freq:
			plan.Actions = append(plan.Actions, Action{
				Type:              ActionUpdate,
				DeploymentID:      dep.ID,
				LocationID:        loc,
				Frequency:         freq,
				RunDelay:          delays[i],
				PreviousFrequency: dep.Deployment.Frequency,
			})
		default:
			plan.Actions = append(plan.Actions, Action{
				Type:         ActionUnchanged,
				DeploymentID: dep.ID,
				LocationID:   loc,
				Frequency:    dep.Deployment.Frequency,
				RunDelay:     dep.Deployment.RunDelay,
			})
		}
		delete(byLocation, loc)
	}

	// Walk the input slice so leftovers come out in a stable order.
	for _, dep := range existing {
		loc := dep.Deployment.LocationID
		left, ok := byLocation[loc]
		if !ok || left.ID != dep.ID {
			continue
		}

		action := Action{
			Type:         ActionDelete,
			Reason:       ReasonNotDesired,
			DeploymentID: dep.ID,
			LocationID:   loc,
			Frequency:    dep.Deployment.Frequency,
			RunDelay:     dep.Deployment.RunDelay,
		}
		if r.opts.NoDelete {
			action.Type = ActionKeep
		}
		plan.Actions = append(plan.Actions, action)
		delete(byLocation, loc)
	}

	return plan
}

// Apply executes a plan in order, writing one status line per action.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan) error {
	for _, a := range plan.Actions {
		if err := r.apply(ctx, plan, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, plan *Plan, a Action) error {
	var err error

	switch a.Type {
	case ActionCreate:
		fmt.Fprintf(r.out, "New deployment %s for workflow %q, freq %d, delay %ds...\t\t",
			a.LocationID, plan.WorkflowName, a.Frequency, a.RunDelay)
		_, err = r.api.CreateDeployment(ctx, deploymentRequest(plan, a))

	case ActionUpdate:
		fmt.Fprintf(r.out, "Updating deployment %s for workflow %q, freq %d -> %d, delay %ds...\t\t",
			a.LocationID, plan.WorkflowName, a.PreviousFrequency, a.Frequency, a.RunDelay)
		_, err = r.api.UpdateDeployment(ctx, a.DeploymentID, deploymentRequest(plan, a))

	case ActionDelete:
		if a.Reason == ReasonDuplicate {
			fmt.Fprintf(r.out, "Deleting duplicate deployment %s for workflow %q...\t\t", a.LocationID, plan.WorkflowName)
		} else {
			fmt.Fprintf(r.out, "Deleting old deployment %s for workflow %q...\t\t", a.LocationID, plan.WorkflowName)
		}
		err = r.api.DeleteDeployment(ctx, a.DeploymentID)

	case ActionKeep:
		fmt.Fprintf(r.out, "Keeping deployment %s for workflow %q (deletion disabled)\n", a.LocationID, plan.WorkflowName)
		metrics.RecordAction(string(a.Type), metrics.ResultOK)
		return nil

	case ActionUnchanged:
		fmt.Fprintf(r.out, "Deployment %s for workflow %q already up to date\n", a.LocationID, plan.WorkflowName)
		metrics.RecordAction(string(a.Type), metrics.ResultOK)
		return nil

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}

	if err != nil {
		fmt.Fprintln(r.out, "FAILED")
		metrics.RecordAction(string(a.Type), metrics.ResultFailed)
		return fmt.Errorf("%s deployment at %s for workflow %q: %w", a.Type, a.LocationID, plan.WorkflowName, err)
	}

	fmt.Fprintln(r.out, "OK")
	metrics.RecordAction(string(a.Type), metrics.ResultOK)
	return nil
}

func deploymentRequest(plan *Plan, a Action) apimetrics.DeploymentRequest {
	return apimetrics.DeploymentRequest{
		Deployment: apimetrics.DeploymentInfo{
			TargetID:   plan.WorkflowID,
			LocationID: a.LocationID,
			Frequency:  a.Frequency,
			RunDelay:   a.RunDelay,
		},
	}
}

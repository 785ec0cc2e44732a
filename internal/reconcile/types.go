package reconcile

import (
	"fmt"
)

type ActionType string

const (
	ActionCreate    ActionType = "create"
	ActionUpdate    ActionType = "update"
	ActionDelete    ActionType = "delete"
	ActionKeep      ActionType = "keep"
	ActionUnchanged ActionType = "unchanged"
)

// Reasons attached to delete and keep actions.
const (
	ReasonDuplicate  = "duplicate"
	ReasonNotDesired = "not desired"
)

// Action is one step needed to bring a workflow's deployments to the
// desired state.
type Action struct {
	Type         ActionType `json:"type" yaml:"type"`
	Reason       string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	DeploymentID string     `json:"deployment_id,omitempty" yaml:"deployment_id,omitempty"`
	LocationID   string     `json:"location_id" yaml:"location_id"`
	Frequency    int        `json:"frequency" yaml:"frequency"`
	RunDelay     int        `json:"run_delay,omitempty" yaml:"run_delay,omitempty"`

	// PreviousFrequency is set on updates.
	PreviousFrequency int `json:"previous_frequency,omitempty" yaml:"previous_frequency,omitempty"`
}

// Mutates reports whether applying the action calls the API.
func (a Action) Mutates() bool {
	switch a.Type {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	switch a.Type {
	case ActionCreate:
		return fmt.Sprintf("Create deployment at %s, freq %d, delay %ds", a.LocationID, a.Frequency, a.RunDelay)
	case ActionUpdate:
		return fmt.Sprintf("Update deployment %s at %s, freq %d -> %d, delay %ds",
			a.DeploymentID, a.LocationID, a.PreviousFrequency, a.Frequency, a.RunDelay)
	case ActionDelete:
		return fmt.Sprintf("Delete deployment %s at %s (%s)", a.DeploymentID, a.LocationID, a.Reason)
	case ActionKeep:
		return fmt.Sprintf("Keep deployment %s at %s (%s, deletion disabled)", a.DeploymentID, a.LocationID, a.Reason)
	case ActionUnchanged:
		return fmt.Sprintf("Deployment %s at %s already up to date", a.DeploymentID, a.LocationID)
	default:
		return string(a.Type)
	}
}

// Plan is the ordered list of actions for one workflow.
type Plan struct {
	WorkflowID   string   `json:"workflow_id" yaml:"workflow_id"`
	WorkflowName string   `json:"workflow_name" yaml:"workflow_name"`
	Actions      []Action `json:"actions" yaml:"actions"`
}

// Mutations returns the number of actions that call the API.
func (p *Plan) Mutations() int {
	n := 0
	for _, a := range p.Actions {
		if a.Mutates() {
			n++
		}
	}
	return n
}

func (p *Plan) Count(t ActionType) int {
	n := 0
	for _, a := range p.Actions {
		if a.Type == t {
			n++
		}
	}
	return n
}

// Summary totals a run.
type Summary struct {
	Processed int `json:"workflows_processed" yaml:"workflows_processed"`
	Skipped   int `json:"workflows_skipped" yaml:"workflows_skipped"`
	Created   int `json:"created" yaml:"created"`
	Updated   int `json:"updated" yaml:"updated"`
	Deleted   int `json:"deleted" yaml:"deleted"`
	Kept      int `json:"kept" yaml:"kept"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
}

// Add folds a reconciled workflow's plan into the totals.
func (s *Summary) Add(p *Plan) {
	s.Processed++
	s.Created += p.Count(ActionCreate)
	s.Updated += p.Count(ActionUpdate)
	s.Deleted += p.Count(ActionDelete)
	s.Kept += p.Count(ActionKeep)
	s.Unchanged += p.Count(ActionUnchanged)
}

func (s Summary) String() string {
	return fmt.Sprintf("%d workflow(s) processed, %d skipped; %d created, %d updated, %d deleted, %d kept, %d unchanged",
		s.Processed, s.Skipped, s.Created, s.Updated, s.Deleted, s.Kept, s.Unchanged)
}

// Result is what a run produced. On error it holds the workflows reconciled
// before the failure.
type Result struct {
	Plans   []*Plan `json:"plans" yaml:"plans"`
	Summary Summary `json:"summary" yaml:"summary"`
}

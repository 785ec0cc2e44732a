// Package apimetrics is a small client for the APImetrics workflow and
// deployment endpoints.
package apimetrics

// Workflow is a named, schedulable API call definition.
type Workflow struct {
	ID   string       `json:"id"`
	Meta WorkflowMeta `json:"meta"`
}

// WorkflowMeta holds the display metadata of a workflow.
type WorkflowMeta struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DeploymentInfo binds a workflow to a location.
type DeploymentInfo struct {
	TargetID   string `json:"target_id"`
	LocationID string `json:"location_id"`
	// Frequency is the number of minutes between calls.
	Frequency int `json:"frequency"`
	// RunDelay is the offset in seconds from the start of the scheduling window.
	RunDelay int `json:"run_delay"`
}

// Deployment is a deployment record as returned by the API.
type Deployment struct {
	ID         string         `json:"id"`
	Deployment DeploymentInfo `json:"deployment"`
}

// DeploymentRequest is the body of create and update calls.
type DeploymentRequest struct {
	Deployment DeploymentInfo `json:"deployment"`
}

// ListOptions narrows list calls.
type ListOptions struct {
	// Limit is the page size requested from the server. Zero uses the server default.
	Limit int
	// Tags restricts workflows to those carrying every tag.
	Tags []string
}

type listMeta struct {
	More       bool   `json:"more"`
	NextCursor string `json:"next_cursor"`
}

type listResponse[T any] struct {
	Results []T      `json:"results"`
	Meta    listMeta `json:"meta"`
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
)

var errInjected = errors.New("injected failure")

type apiCall struct {
	Method string
	ID     string
	Req    apimetrics.DeploymentRequest
}

// fakeAPI is an in-memory deployment store that records every call.
type fakeAPI struct {
	workflows   []apimetrics.Workflow
	deployments map[string][]apimetrics.Deployment
	calls       []apiCall
	nextID      int

	// failOn makes the named method return errInjected.
	failOn string
}

func newFakeAPI(workflows ...apimetrics.Workflow) *fakeAPI {
	return &fakeAPI{
		workflows:   workflows,
		deployments: make(map[string][]apimetrics.Deployment),
	}
}

func workflow(id, name string) apimetrics.Workflow {
	return apimetrics.Workflow{ID: id, Meta: apimetrics.WorkflowMeta{Name: name}}
}

func (f *fakeAPI) seed(workflowID, id, location string, frequency, runDelay int) {
	f.deployments[workflowID] = append(f.deployments[workflowID], apimetrics.Deployment{
		ID: id,
		Deployment: apimetrics.DeploymentInfo{
			TargetID:   workflowID,
			LocationID: location,
			Frequency:  frequency,
			RunDelay:   runDelay,
		},
	})
}

func (f *fakeAPI) record(method, id string, req apimetrics.DeploymentRequest) error {
	f.calls = append(f.calls, apiCall{Method: method, ID: id, Req: req})
	if f.failOn == method {
		return errInjected
	}
	return nil
}

func (f *fakeAPI) ListWorkflows(_ context.Context, _ apimetrics.ListOptions) ([]apimetrics.Workflow, error) {
	if err := f.record("ListWorkflows", "", apimetrics.DeploymentRequest{}); err != nil {
		return nil, err
	}
	return f.workflows, nil
}

func (f *fakeAPI) ListDeploymentsByWorkflow(_ context.Context, workflowID string) ([]apimetrics.Deployment, error) {
	if err := f.record("ListDeploymentsByWorkflow", workflowID, apimetrics.DeploymentRequest{}); err != nil {
		return nil, err
	}
	out := make([]apimetrics.Deployment, len(f.deployments[workflowID]))
	copy(out, f.deployments[workflowID])
	return out, nil
}

func (f *fakeAPI) CreateDeployment(_ context.Context, req apimetrics.DeploymentRequest) (*apimetrics.Deployment, error) {
	if err := f.record("CreateDeployment", "", req); err != nil {
		return nil, err
	}
	f.nextID++
	dep := apimetrics.Deployment{ID: fmt.Sprintf("new-%d", f.nextID), Deployment: req.Deployment}
	target := req.Deployment.TargetID
	f.deployments[target] = append(f.deployments[target], dep)
	return &dep, nil
}

func (f *fakeAPI) UpdateDeployment(_ context.Context, id string, req apimetrics.DeploymentRequest) (*apimetrics.Deployment, error) {
	if err := f.record("UpdateDeployment", id, req); err != nil {
		return nil, err
	}
	for wf, deps := range f.deployments {
		for i := range deps {
			if deps[i].ID == id {
				deps[i].Deployment = req.Deployment
				f.deployments[wf] = deps
				dep := deps[i]
				return &dep, nil
			}
		}
	}
	return nil, &apimetrics.Error{StatusCode: 404, Message: "no such deployment"}
}

func (f *fakeAPI) DeleteDeployment(_ context.Context, id string) error {
	if err := f.record("DeleteDeployment", id, apimetrics.DeploymentRequest{}); err != nil {
		return err
	}
	for wf, deps := range f.deployments {
		for i := range deps {
			if deps[i].ID == id {
				f.deployments[wf] = append(deps[:i:i], deps[i+1:]...)
				return nil
			}
		}
	}
	return &apimetrics.Error{StatusCode: 404, Message: "no such deployment"}
}

func (f *fakeAPI) callsTo(method string) []apiCall {
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) mutations() int {
	return len(f.callsTo("CreateDeployment")) + len(f.callsTo("UpdateDeployment")) + len(f.callsTo("DeleteDeployment"))
}

func (f *fakeAPI) resetCalls() {
	f.calls = nil
}

func (f *fakeAPI) locations(workflowID string) []string {
	var out []string
	for _, d := range f.deployments[workflowID] {
		out = append(out, d.Deployment.LocationID)
	}
	return out
}

func seededShuffle(seed uint64) ShuffleFunc {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Shuffle
}

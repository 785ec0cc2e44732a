package apimetrics

import (
	"context"
	"net/http"
)

func (c *Client) ListDeploymentsByWorkflow(ctx context.Context, workflowID string) ([]Deployment, error) {
	return listAll[Deployment](ctx, c, "list_deployments", "deployments/workflow/"+workflowID+"/", nil)
}

func (c *Client) CreateDeployment(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	var created Deployment
	if err := c.do(ctx, "create_deployment", http.MethodPost, "deployments/", nil, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDeployment replaces the deployment body of an existing record.
func (c *Client) UpdateDeployment(ctx context.Context, id string, req DeploymentRequest) (*Deployment, error) {
	var updated Deployment
	if err := c.do(ctx, "update_deployment", http.MethodPost, "deployments/"+id+"/", nil, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, id string) error {
	return c.do(ctx, "delete_deployment", http.MethodDelete, "deployments/"+id+"/", nil, nil, nil)
}

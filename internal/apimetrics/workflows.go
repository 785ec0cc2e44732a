package apimetrics

import (
	"context"
	"net/url"
	"strconv"
)

// ListWorkflows returns every workflow visible to the API key, following
// pagination until the last page.
func (c *Client) ListWorkflows(ctx context.Context, opts ListOptions) ([]Workflow, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	for _, tag := range opts.Tags {
		query.Add("tag", tag)
	}

	return listAll[Workflow](ctx, c, "list_workflows", "workflows/", query)
}

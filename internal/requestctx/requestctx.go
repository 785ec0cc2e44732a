// Package requestctx carries run correlation values through a context so
// API requests and log lines can be tied back to a run and a workflow.
package requestctx

import (
	"context"
)

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	workflowKey contextKey = "workflow_id"
)

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

func WithWorkflowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workflowKey, id)
}

func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

func WorkflowID(ctx context.Context) string {
	if id, ok := ctx.Value(workflowKey).(string); ok {
		return id
	}
	return ""
}

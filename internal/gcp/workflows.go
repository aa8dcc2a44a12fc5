package gcp

import (
	"context"
	"fmt"

	executions "cloud.google.com/go/workflows/executions/apiv1"
)

// NewExecutionsClient creates a Workflows Executions client, used to
// schedule background processing runs.
func NewExecutionsClient(ctx context.Context) (*executions.Client, error) {
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return client, nil
}

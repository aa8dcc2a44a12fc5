package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Bennexy/edms-local/internal/models"
)

// Dispatcher schedules a Process run decoupled from the upload request.
// Implementations receive the task's arguments and invoke the work
// themselves; a task is a deferred call, never a precomputed result.
type Dispatcher interface {
	Dispatch(ctx context.Context, task models.ProcessTask) error
}

// InlineDispatcher runs the task on a goroutine inside this process, with
// its own deadline so an abandoned upload request cannot cancel it.
type InlineDispatcher struct {
	Service *DocumentService
	Timeout time.Duration
}

func (d *InlineDispatcher) Dispatch(_ context.Context, task models.ProcessTask) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()

		_, err := d.Service.Process(ctx, task.OwnerID, task.DocumentID, ProcessOptions{
			ForceOCR: task.ForceOCR,
			SkipText: task.SkipText,
		})
		if err != nil {
			slog.Error("Background processing failed.", "documentId", task.DocumentID, "error", err)
		}
	}()
	return nil
}

// WorkflowDispatcher hands the task to a Cloud Workflow whose worker step
// POSTs it back to the process endpoint.
type WorkflowDispatcher struct {
	Client           *executions.Client
	ProjectID        string
	WorkflowLocation string
	WorkflowID       string
}

func (d *WorkflowDispatcher) Dispatch(ctx context.Context, task models.ProcessTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal process task: %w", err)
	}

	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", d.ProjectID, d.WorkflowLocation, d.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payload),
		},
	}
	if _, err := d.Client.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	slog.Info("Scheduled background processing.", "documentId", task.DocumentID, "workflowId", d.WorkflowID)
	return nil
}

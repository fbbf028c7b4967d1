// Package orchestrator owns workflows and their lifecycle: it turns a
// router.RoutingDecision into a workflow.Workflow, schedules tasks under a
// parallelism cap via its DAG scheduler, handles cancellation and failure
// semantics, and emits per-workflow and per-worker metrics (spec §4.3).
package orchestrator

import (
	"time"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/workflow"
)

// TaskSnapshot is a read-only view of one task's current state (spec §6.3
// Status query response).
type TaskSnapshot struct {
	TaskID   string
	Status   workflow.Status
	Error    *workflow.TaskErrorInfo
	Attempts int
}

// Snapshot is the Orchestrator's status(workflow_id) response (spec §4.3,
// §6.3).
type Snapshot struct {
	WorkflowID string
	Status     workflow.Status
	Tasks      []TaskSnapshot
	Elapsed    time.Duration
	Report     *guardrails.Report
}

// FailureInfo describes why a workflow did not complete (spec §6.4).
type FailureInfo struct {
	Kind          string
	Message       string
	FailingTaskID string
	Evidence      []string
}

// WorkflowResult is execute_workflow's blocking response (spec §4.3, §6.4).
// Failure is set when Status is failed. Content is set when every task
// completed, and is kept when the guardrail gate then marks the result
// failed. A cancelled workflow carries neither.
type WorkflowResult struct {
	WorkflowID     string
	Status         workflow.Status
	Content        string
	Failure        *FailureInfo
	ProcessingTime time.Duration
	Report         *guardrails.Report
}

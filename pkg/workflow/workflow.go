// Package workflow holds the Task/Workflow data model (spec §3) and the
// dependency-graph validation the Orchestrator runs at construction time.
package workflow

import (
	"time"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

// Status is the shared Task/Workflow lifecycle enum (spec §3 invariants:
// pending → running → {completed, failed, cancelled}; no back-transitions).
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether s is one of the non-reversible end states.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// TaskErrorInfo carries a failed task's error kind and message (spec §3).
type TaskErrorInfo struct {
	Kind    string
	Message string
}

// Task is a single unit of work assigned to one worker (spec §3).
type Task struct {
	ID             string
	WorkerID       worker.ID
	Input          worker.TaskInput
	Dependencies   []string
	Priority       int // 1-4, 4 highest
	Status         Status
	Result         *worker.TaskResult
	Error          *TaskErrorInfo
	CreatedAt      time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
	ProcessingTime time.Duration
	Attempts       int
}

// Workflow is a DAG of Tasks produced from a single Request (spec §3).
type Workflow struct {
	ID                 string
	Name               string
	Description        string
	Tasks              map[string]*Task
	TaskOrder          []string // insertion order, used for deterministic iteration
	Status             Status
	PermissionLevel    string
	UserID             string
	DocumentID         string
	ProjectID          string
	CreatedAt          time.Time
	StartedAt          time.Time
	CompletedAt        time.Time
	TotalProcessingTime time.Duration
}

// NewWorkflow constructs an empty workflow shell; tasks are added via AddTask
// before Validate is called.
func NewWorkflow(id, name, description string) *Workflow {
	return &Workflow{
		ID:          id,
		Name:        name,
		Description: description,
		Tasks:       make(map[string]*Task),
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
}

// AddTask registers t under the workflow, defaulting its Status to pending
// and CreatedAt to now if unset.
func (w *Workflow) AddTask(t *Task) {
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	w.Tasks[t.ID] = t
	w.TaskOrder = append(w.TaskOrder, t.ID)
}

// AllCompleted reports whether every task in the workflow is completed
// (spec §8: W.status = completed ⇒ ∀ T ∈ W: T.status = completed).
func (w *Workflow) AllCompleted() bool {
	for _, id := range w.TaskOrder {
		if w.Tasks[id].Status != StatusCompleted {
			return false
		}
	}
	return true
}

// AnyFailed reports whether at least one task ended failed.
func (w *Workflow) AnyFailed() bool {
	for _, id := range w.TaskOrder {
		if w.Tasks[id].Status == StatusFailed {
			return true
		}
	}
	return false
}

// DeriveTerminalStatus computes the workflow-level status once all tasks
// are terminal, per spec §3's invariant: completed iff all tasks completed;
// failed if any task failed; cancelled if cancellation was requested.
func (w *Workflow) DeriveTerminalStatus(cancellationRequested bool) Status {
	if cancellationRequested {
		return StatusCancelled
	}
	if w.AnyFailed() {
		return StatusFailed
	}
	if w.AllCompleted() {
		return StatusCompleted
	}
	return StatusFailed // stuck/deadlock path: never all-terminal with no failures but not all completed
}

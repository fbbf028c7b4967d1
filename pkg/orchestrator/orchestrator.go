package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/deviation"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/hallucination"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/metrics"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/workflow"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// Orchestrator owns workflows and their lifecycle (spec §4.3): create,
// execute, query status, cancel, and report metrics.
type Orchestrator struct {
	registry   *worker.Registry
	cfg        config.SchedulerConfig
	metrics    *metricsCollector
	log        *logrus.Entry
	guardrails *guardrails.Pipeline

	mu        sync.Mutex
	workflows map[string]*workflowHandle
}

type workflowHandle struct {
	wf          *workflow.Workflow
	scheduler   *scheduler
	createdAt   time.Time
	contentType string
	objectives  []deviation.Objective
	verifyLevel hallucination.VerificationLevel
	lastReport  *guardrails.Report
}

// New builds an Orchestrator bound to registry for worker dispatch.
// guardrailsPipeline is optional; when nil, completed workflows carry no
// guardrail report (spec §6.4 is then the caller's responsibility).
func New(registry *worker.Registry, cfg config.SchedulerConfig, guardrailsPipeline *guardrails.Pipeline, log *logrus.Entry) *Orchestrator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.ParallelismCap <= 0 {
		cfg.ParallelismCap = 3
	}
	return &Orchestrator{
		registry:   registry,
		cfg:        cfg,
		metrics:    newMetricsCollector(),
		log:        log.WithField("component", "orchestrator"),
		guardrails: guardrailsPipeline,
		workflows:  make(map[string]*workflowHandle),
	}
}

// CreateWorkflow turns a RoutingDecision into a validated Workflow (spec
// §4.3's create_workflow), grounded on agent_orchestrator.py's
// create_workflow/_create_workflow_tasks. grantedPermission is the
// permission level the caller's Request actually granted (spec §3
// invariant); it must be at or above decision.RequiredPermission.
func (o *Orchestrator) CreateWorkflow(decision router.RoutingDecision, name, userID, documentID string, grantedPermission router.PermissionLevel) (string, error) {
	wfID := uuid.NewString()
	wf := workflow.NewWorkflow(wfID, name, "")
	wf.PermissionLevel = string(decision.RequiredPermission)
	wf.UserID = userID
	wf.DocumentID = documentID

	for _, item := range decision.TaskBreakdown {
		wf.AddTask(&workflow.Task{
			ID:           item.SubtaskID,
			WorkerID:     item.AssignedWorker,
			Dependencies: item.DependsOn,
			Priority:     item.Priority,
			Input: worker.TaskInput{
				TaskID: item.SubtaskID,
				Kind:   item.Description,
			},
		})
	}

	if err := wf.Validate(decision.RequiredPermission.Rank(), grantedPermission.Rank()); err != nil {
		return "", err
	}

	o.mu.Lock()
	o.workflows[wfID] = &workflowHandle{
		wf:          wf,
		scheduler:   newScheduler(wf, o.registry, o.cfg, o.metrics, o.log),
		createdAt:   time.Now(),
		contentType: "article",
		verifyLevel: hallucination.VerificationStandard,
	}
	o.mu.Unlock()

	return wfID, nil
}

// SetGuardrailContext supplies the content type, verification level, and
// project objectives the guardrail pipeline should use for this workflow
// (spec §4.4-§4.6). Optional: a workflow not configured here runs the
// pipeline with the defaults ("article", standard, no objectives).
func (o *Orchestrator) SetGuardrailContext(workflowID, contentType string, level hallucination.VerificationLevel, objectives []deviation.Objective) error {
	handle, err := o.getHandle(workflowID)
	if err != nil {
		return err
	}
	handle.contentType = contentType
	handle.verifyLevel = level
	handle.objectives = objectives
	return nil
}

// ExecuteWorkflow runs the DAG scheduler to completion (spec §4.3's
// execute_workflow, blocking, cancellation via ctx).
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, workflowID string) (WorkflowResult, error) {
	handle, err := o.getHandle(workflowID)
	if err != nil {
		return WorkflowResult{}, err
	}

	handle.wf.Status = workflow.StatusRunning
	handle.wf.StartedAt = time.Now()
	metrics.ActiveWorkflows.Inc()
	defer metrics.ActiveWorkflows.Dec()

	runErr := handle.scheduler.run(ctx)

	cancellationRequested := handle.scheduler.isCancelled()
	finalStatus := handle.wf.DeriveTerminalStatus(cancellationRequested)
	handle.wf.Status = finalStatus
	handle.wf.CompletedAt = time.Now()
	handle.wf.TotalProcessingTime = handle.wf.CompletedAt.Sub(handle.wf.StartedAt)

	o.metrics.recordWorkflow(string(finalStatus), handle.wf.TotalProcessingTime)
	metrics.RecordWorkflow(string(finalStatus), handle.wf.TotalProcessingTime)

	result := WorkflowResult{
		WorkflowID:     workflowID,
		Status:         finalStatus,
		ProcessingTime: handle.wf.TotalProcessingTime,
	}

	if runErr != nil {
		kind, _ := writecrewerr.KindOf(runErr)
		result.Failure = &FailureInfo{Kind: string(kind), Message: runErr.Error()}
		return result, nil
	}

	if finalStatus == workflow.StatusFailed {
		result.Failure = o.buildFailureInfo(handle.wf)
		return result, nil
	}

	if finalStatus != workflow.StatusCompleted {
		return result, nil
	}

	result.Content = primaryContent(handle.wf)

	if o.guardrails != nil {
		report := o.guardrails.Run(ctx, workflowID, result.Content, handle.contentType, handle.verifyLevel, handle.objectives)
		result.Report = &report
		handle.lastReport = &report

		// spec §7: guardrail_blocked forces a failed outcome when the
		// workflow's permission level is assistant and the acceptance flag
		// is false, regardless of the DAG's own completed status. That level
		// is the decision's required permission, which is assistant whenever
		// the request itself asked for assistant.
		if handle.wf.PermissionLevel == string(router.PermissionAssistant) && !report.Acceptance {
			handle.wf.Status = workflow.StatusFailed
			result.Status = workflow.StatusFailed
			result.Failure = &FailureInfo{
				Kind:    string(writecrewerr.KindGuardrailBlocked),
				Message: "guardrail acceptance flag is false under assistant-level permission",
			}
		}
	}

	return result, nil
}

func (o *Orchestrator) buildFailureInfo(wf *workflow.Workflow) *FailureInfo {
	for _, id := range wf.TaskOrder {
		t := wf.Tasks[id]
		if t.Status == workflow.StatusFailed && t.Error != nil {
			return &FailureInfo{
				Kind:          t.Error.Kind,
				Message:       t.Error.Message,
				FailingTaskID: t.ID,
			}
		}
	}
	return &FailureInfo{Kind: "unknown", Message: "workflow failed with no recorded task error"}
}

// primaryContent returns the result content of the first task, in breakdown
// order, that has no dependencies and a result — the primary subtask, which
// the Router lists first. Supporting workers' results are not merged into
// it; this is the primary's raw output.
func primaryContent(wf *workflow.Workflow) string {
	for _, id := range wf.TaskOrder {
		t := wf.Tasks[id]
		if len(t.Dependencies) == 0 && t.Result != nil {
			return t.Result.Content
		}
	}
	return ""
}

// Status implements spec §4.3's status(workflow_id) → Snapshot.
func (o *Orchestrator) Status(workflowID string) (Snapshot, error) {
	handle, err := o.getHandle(workflowID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{WorkflowID: workflowID, Status: handle.wf.Status, Report: handle.lastReport}
	if !handle.wf.StartedAt.IsZero() {
		end := handle.wf.CompletedAt
		if end.IsZero() {
			end = time.Now()
		}
		snap.Elapsed = end.Sub(handle.wf.StartedAt)
	}
	for _, id := range handle.wf.TaskOrder {
		t := handle.wf.Tasks[id]
		snap.Tasks = append(snap.Tasks, TaskSnapshot{
			TaskID: t.ID, Status: t.Status, Error: t.Error, Attempts: t.Attempts,
		})
	}
	return snap, nil
}

// Cancel implements spec §4.3's cancel(workflow_id) → bool, idempotent.
func (o *Orchestrator) Cancel(workflowID string) bool {
	handle, err := o.getHandle(workflowID)
	if err != nil {
		return false
	}
	if handle.wf.Status.IsTerminal() {
		return false
	}
	already := handle.scheduler.isCancelled()
	handle.scheduler.requestCancel()
	return !already
}

// Metrics implements spec §4.3's metrics() → GlobalMetrics.
func (o *Orchestrator) Metrics() GlobalMetrics { return o.metrics.snapshot() }

// StartRetention launches the background sweep that destroys terminal
// workflows past cfg.MaxAge (completed ones only once their report has been
// emitted; spec §3 lifecycle), gated by cfg.Cron. It returns a stop func; calling it is optional, but callers that
// never invoke StartRetention simply never reclaim completed workflows.
func (o *Orchestrator) StartRetention(cfg config.WorkflowRetentionConfig) (stop func()) {
	sweeper := newRetentionSweeper(cfg.Cron, cfg.MaxAge)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if !sweeper.due(now) {
					continue
				}
				o.mu.Lock()
				removed := sweeper.sweep(now, o.workflows)
				o.mu.Unlock()
				if len(removed) > 0 {
					o.log.WithField("count", len(removed)).Info("retention sweep removed completed workflows")
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// AllocationReport surfaces worker allocation concerns (SPEC_FULL.md §12).
func (o *Orchestrator) AllocationReport() []AllocationFlag { return o.metrics.allocationReport() }

func (o *Orchestrator) getHandle(workflowID string) (*workflowHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.workflows[workflowID]
	if !ok {
		return nil, fmt.Errorf("orchestrator: unknown workflow %s", workflowID)
	}
	return h, nil
}

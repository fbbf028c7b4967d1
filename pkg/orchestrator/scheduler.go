package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/metrics"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/workflow"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// tracer wraps each task dispatch, the scheduler's suspension point named
// in spec §5. No exporter is wired beyond the process-wide default (a
// no-op unless the host process configures one); deeper collector
// integration is out of scope (no deployment topology is specified).
var tracer = otel.Tracer("writecrew/orchestrator")

// completion is what an execution unit reports back to the scheduler loop
// when a task terminates (spec §9's design note on coroutine-style
// suspension: "a completion channel" the scheduler waits on).
type completion struct {
	taskID string
	result worker.TaskResult
	err    error
}

// scheduler runs the ready-set/dispatch/wait loop for a single workflow
// (spec §4.3's scheduling algorithm), grounded on agent_orchestrator.py's
// execute_workflow and the pack's DAG scheduler reference implementation
// for the Go concurrency shape (semaphore-bounded dispatch, completion
// channel, cascade-skip on permanent failure).
type scheduler struct {
	wf       *workflow.Workflow
	registry *worker.Registry
	cfg      config.SchedulerConfig
	metrics  *metricsCollector
	log      *logrus.Entry

	mu        sync.Mutex
	cancelled bool
	done      chan completion
	retrying  int32
}

func newScheduler(wf *workflow.Workflow, registry *worker.Registry, cfg config.SchedulerConfig, metrics *metricsCollector, log *logrus.Entry) *scheduler {
	return &scheduler{
		wf:       wf,
		registry: registry,
		cfg:      cfg,
		metrics:  metrics,
		log:      log.WithField("workflow_id", wf.ID),
		done:     make(chan completion, 1),
	}
}

// run drives the workflow to a terminal status, implementing spec §4.3
// steps 1-5 and the terminal conditions (all-terminal, stuck/deadlock,
// cancellation).
func (s *scheduler) run(ctx context.Context) error {
	inFlight := 0

	for {
		if s.isCancelled() {
			return s.awaitGraceAndFinish(ctx)
		}
		if ctx.Err() != nil {
			s.requestCancel()
			return s.awaitGraceAndFinish(ctx)
		}

		ready := s.readySet()
		if len(ready) == 0 && inFlight == 0 {
			if s.wf.AllCompleted() {
				return nil
			}
			if atomic.LoadInt32(&s.retrying) > 0 {
				// a transient-failure retry is backing off; it is not
				// "ready" or "in flight" but the workflow is not stuck.
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if s.hasPendingTasks() {
				return s.failStuck()
			}
			return nil
		}

		capacity := s.cfg.ParallelismCap - inFlight
		if capacity < 0 {
			capacity = 0
		}
		toDispatch := ready
		if len(toDispatch) > capacity {
			toDispatch = toDispatch[:capacity]
		}
		for _, t := range toDispatch {
			s.dispatch(ctx, t)
			inFlight++
		}

		if inFlight == 0 {
			continue
		}

		select {
		case c := <-s.done:
			inFlight--
			s.handleCompletion(c)
		case <-ctx.Done():
			s.requestCancel()
		case <-time.After(10 * time.Millisecond):
			// Cancel only sets a flag; wake up to re-check it even when no
			// running task reports back.
		}
	}
}

// readySet computes { t : t.status = pending ∧ deps(t) ⊆ completed },
// sorted by (priority desc, created_at asc) per spec §4.3 steps 1-2.
func (s *scheduler) readySet() []*workflow.Task {
	var ready []*workflow.Task
	for _, id := range s.wf.TaskOrder {
		t := s.wf.Tasks[id]
		if t.Status != workflow.StatusPending {
			continue
		}
		if s.depsSatisfied(t) {
			ready = append(ready, t)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority > ready[j].Priority
		}
		return ready[i].CreatedAt.Before(ready[j].CreatedAt)
	})
	return ready
}

func (s *scheduler) depsSatisfied(t *workflow.Task) bool {
	for _, dep := range t.Dependencies {
		if d, ok := s.wf.Tasks[dep]; !ok || d.Status != workflow.StatusCompleted {
			return false
		}
	}
	return true
}

func (s *scheduler) hasPendingTasks() bool {
	for _, id := range s.wf.TaskOrder {
		if s.wf.Tasks[id].Status == workflow.StatusPending {
			return true
		}
	}
	return false
}

// dispatch hands t to its worker on a separate execution unit (goroutine),
// applying the per-task timeout and reporting back on the completion
// channel (spec §4.3 step 4, §5 suspension points).
func (s *scheduler) dispatch(ctx context.Context, t *workflow.Task) {
	t.Status = workflow.StatusRunning
	t.StartedAt = time.Now()
	t.Attempts++

	if len(t.Dependencies) > 0 {
		upstream := make(map[string]string, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if d, ok := s.wf.Tasks[dep]; ok && d.Result != nil {
				upstream[dep] = d.Result.Content
			}
		}
		t.Input.UpstreamResults = upstream
	}

	w, ok := s.registry.Get(t.WorkerID)
	if !ok {
		s.done <- completion{taskID: t.ID, err: writecrewerr.New("scheduler", "dispatch", writecrewerr.KindWorkerUnavailable,
			fmt.Errorf("worker %s not registered", t.WorkerID))}
		return
	}

	timeout := s.cfg.DefaultTaskTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.done <- completion{taskID: t.ID, err: fmt.Errorf("worker panic: %v", r)}
			}
		}()

		spanCtx, span := tracer.Start(ctx, "task.dispatch", trace.WithAttributes(
			attribute.String("task.id", t.ID),
			attribute.String("worker.id", string(t.WorkerID)),
		))
		defer span.End()

		taskCtx, cancel := context.WithTimeout(spanCtx, timeout)
		defer cancel()

		result, err := w.Execute(taskCtx, t.Input)
		s.done <- completion{taskID: t.ID, result: result, err: err}
	}()
}

// handleCompletion applies a completed execution unit's result to its task,
// including the retry policy (§4.3 failure policy) and dependency-failure
// cascade (§4.3, §8 scenario S4).
func (s *scheduler) handleCompletion(c completion) {
	t, ok := s.wf.Tasks[c.taskID]
	if !ok {
		return
	}

	classification, kind, msg := classifyOutcome(c)
	if classification == "" {
		// success
		t.Status = workflow.StatusCompleted
		t.CompletedAt = time.Now()
		t.ProcessingTime += t.CompletedAt.Sub(t.StartedAt)
		t.Result = &c.result
		s.metrics.recordTask(t.WorkerID, true, t.ProcessingTime)
		metrics.RecordTask(string(t.WorkerID), "completed", t.ProcessingTime)
		return
	}

	t.ProcessingTime += time.Since(t.StartedAt)

	if classification == writecrewerr.Transient && t.Attempts <= s.cfg.MaxRetries {
		s.log.WithFields(logrus.Fields{"task_id": t.ID, "attempt": t.Attempts, "kind": kind}).
			Warn("transient task failure, scheduling retry")
		s.scheduleRetry(t)
		return
	}

	t.Status = workflow.StatusFailed
	t.CompletedAt = time.Now()
	t.Error = &workflow.TaskErrorInfo{Kind: kind, Message: msg}
	s.metrics.recordTask(t.WorkerID, false, t.ProcessingTime)
	metrics.RecordTask(string(t.WorkerID), "failed", t.ProcessingTime)
	s.cascadeDependencyFailure(t.ID)
}

func classifyOutcome(c completion) (writecrewerr.Classification, string, string) {
	if c.err != nil {
		if k, ok := writecrewerr.KindOf(c.err); ok {
			return writecrewerr.Classify(k), string(k), c.err.Error()
		}
		return writecrewerr.Classify(writecrewerr.KindBackendFailure), string(writecrewerr.KindBackendFailure), c.err.Error()
	}
	if c.result.Status == worker.StatusFailed {
		classification := writecrewerr.Permanent
		kind := string(writecrewerr.KindInvalidRequest)
		msg := "worker reported failure"
		if c.result.Error != nil {
			kind = c.result.Error.Kind
			msg = c.result.Error.Message
			if c.result.Error.Classification == worker.ClassificationTransient {
				classification = writecrewerr.Transient
			}
		}
		return classification, kind, msg
	}
	return "", "", ""
}

// scheduleRetry re-queues t as pending after an exponential backoff with
// jitter (spec §4.3: "base 1s, factor 2, jitter ±25%"). Each attempt is a
// fresh started_at; processing_time accumulates across attempts, so the
// accumulation already happened in handleCompletion before this is called.
func (s *scheduler) scheduleRetry(t *workflow.Task) {
	base := s.cfg.RetryBaseDelay
	if base <= 0 {
		base = time.Second
	}
	factor := s.cfg.RetryBackoffFactor
	if factor <= 0 {
		factor = 2
	}
	jitterRatio := s.cfg.RetryJitter
	if jitterRatio <= 0 {
		jitterRatio = 0.25
	}

	delay := time.Duration(float64(base) * pow(factor, float64(t.Attempts-1)))
	jitter := delay.Seconds() * jitterRatio * (rand.Float64()*2 - 1)
	delay += time.Duration(jitter * float64(time.Second))
	if delay < 0 {
		delay = 0
	}

	metrics.RecordTaskRetry(string(t.WorkerID))
	atomic.AddInt32(&s.retrying, 1)
	go func() {
		time.Sleep(delay)
		t.Status = workflow.StatusPending
		atomic.AddInt32(&s.retrying, -1)
	}()
}

func pow(base, exp float64) float64 {
	result := 1.0
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	return result
}

// cascadeDependencyFailure marks every task transitively depending on
// failedID as cancelled with dependency_failed (spec §4.3, §8 scenario S4),
// grounded on the pack's DAG scheduler's BFS cascadeSkip.
func (s *scheduler) cascadeDependencyFailure(failedID string) {
	dependents := make(map[string][]string, len(s.wf.TaskOrder))
	for _, id := range s.wf.TaskOrder {
		t := s.wf.Tasks[id]
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := []string{failedID}
	visited := map[string]struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, childID := range dependents[cur] {
			if _, seen := visited[childID]; seen {
				continue
			}
			visited[childID] = struct{}{}
			child := s.wf.Tasks[childID]
			if child.Status == workflow.StatusPending || child.Status == workflow.StatusRunning {
				child.Status = workflow.StatusCancelled
				child.CompletedAt = time.Now()
				child.Error = &workflow.TaskErrorInfo{
					Kind:    string(writecrewerr.KindDependencyFailed),
					Message: fmt.Sprintf("upstream dependency %s failed", failedID),
				}
			}
			queue = append(queue, childID)
		}
	}
}

func (s *scheduler) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *scheduler) requestCancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

// awaitGraceAndFinish stops dispatching, waits up to CancelGracePeriod for
// in-flight tasks to terminate, then force-abandons any stragglers with
// cancellation_grace_exceeded (spec §5 cancellation semantics).
func (s *scheduler) awaitGraceAndFinish(ctx context.Context) error {
	grace := s.cfg.CancelGracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}
	deadline := time.After(grace)

	for {
		stillRunning := false
		for _, id := range s.wf.TaskOrder {
			if s.wf.Tasks[id].Status == workflow.StatusRunning {
				stillRunning = true
			}
		}
		if !stillRunning {
			break
		}
		select {
		case c := <-s.done:
			s.handleCompletion(c)
		case <-deadline:
			s.forceAbandonRunning()
			return nil
		}
	}

	for _, id := range s.wf.TaskOrder {
		t := s.wf.Tasks[id]
		if t.Status == workflow.StatusPending {
			t.Status = workflow.StatusCancelled
		}
	}
	return nil
}

func (s *scheduler) forceAbandonRunning() {
	for _, id := range s.wf.TaskOrder {
		t := s.wf.Tasks[id]
		if t.Status == workflow.StatusRunning {
			t.Status = workflow.StatusCancelled
			t.CompletedAt = time.Now()
			t.Error = &workflow.TaskErrorInfo{
				Kind:    string(writecrewerr.KindCancellationGraceExceeded),
				Message: "task did not terminate within the cancellation grace period",
			}
		}
		if t.Status == workflow.StatusPending {
			t.Status = workflow.StatusCancelled
		}
	}
}

// failStuck handles the deadlock/circular-reference terminal condition
// (spec §4.3: "ready empty while tasks remain pending and none are
// running").
func (s *scheduler) failStuck() error {
	var pendingIDs []string
	for _, id := range s.wf.TaskOrder {
		if s.wf.Tasks[id].Status == workflow.StatusPending {
			pendingIDs = append(pendingIDs, id)
			s.wf.Tasks[id].Status = workflow.StatusFailed
			s.wf.Tasks[id].Error = &workflow.TaskErrorInfo{
				Kind:    "deadlock_or_missing_dependency",
				Message: "no ready tasks while pending tasks remain",
			}
		}
	}
	return writecrewerr.New("scheduler", "run", writecrewerr.KindDependencyFailed,
		fmt.Errorf("stuck: pending tasks with unsatisfiable dependencies: %v", pendingIDs))
}

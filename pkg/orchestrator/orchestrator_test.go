package orchestrator_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/orchestrator"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

func TestOrchestrator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orchestrator Suite")
}

type scriptedWorker struct {
	id       worker.ID
	execute  func(ctx context.Context, input worker.TaskInput) (worker.TaskResult, error)
	running  int32
	maxSeen  int32
}

func (w *scriptedWorker) Metadata() worker.Metadata     { return worker.Metadata{ID: w.id, Delegable: true} }
func (w *scriptedWorker) Capabilities() worker.Capabilities { return worker.Capabilities{} }
func (w *scriptedWorker) Health() worker.Health         { return worker.Health{Healthy: true} }
func (w *scriptedWorker) Execute(ctx context.Context, input worker.TaskInput) (worker.TaskResult, error) {
	n := atomic.AddInt32(&w.running, 1)
	defer atomic.AddInt32(&w.running, -1)
	for {
		old := atomic.LoadInt32(&w.maxSeen)
		if n <= old || atomic.CompareAndSwapInt32(&w.maxSeen, old, n) {
			break
		}
	}
	return w.execute(ctx, input)
}

func succeeds(content string) func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
	return func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
		return worker.TaskResult{Status: worker.StatusCompleted, Content: content, Confidence: 0.9}, nil
	}
}

func failsPermanently() func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
	return func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
		return worker.TaskResult{
			Status: worker.StatusFailed,
			Error:  &worker.TaskError{Kind: "invalid_request", Message: "bad input", Classification: worker.ClassificationPermanent},
		}, nil
	}
}

func sleeps(d time.Duration) func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
	return func(ctx context.Context, input worker.TaskInput) (worker.TaskResult, error) {
		select {
		case <-time.After(d):
			return worker.TaskResult{Status: worker.StatusCompleted, Confidence: 0.8}, nil
		case <-ctx.Done():
			return worker.TaskResult{}, ctx.Err()
		}
	}
}

func never() func(context.Context, worker.TaskInput) (worker.TaskResult, error) {
	return func(ctx context.Context, input worker.TaskInput) (worker.TaskResult, error) {
		<-make(chan struct{})
		return worker.TaskResult{}, nil
	}
}

func newOrchestrator(cfg config.SchedulerConfig, workers ...*scriptedWorker) (*orchestrator.Orchestrator, *worker.Registry) {
	reg := worker.NewRegistry()
	for _, w := range workers {
		_ = reg.Register(w)
	}
	log := logrus.NewEntry(logrus.New())
	return orchestrator.New(reg, cfg, nil, log), reg
}

var baseCfg = config.SchedulerConfig{
	ParallelismCap:     3,
	MaxRetries:         3,
	RetryBaseDelay:     10 * time.Millisecond,
	RetryBackoffFactor: 2,
	RetryJitter:        0,
	CancelGracePeriod:  200 * time.Millisecond,
	DefaultTaskTimeout: 2 * time.Second,
}

var _ = Describe("Orchestrator", func() {
	It("rejects a cyclic workflow at construction without incrementing total_workflows (S3)", func() {
		o, _ := newOrchestrator(baseCfg)
		decision := router.RoutingDecision{
			PrimaryWorkerID: worker.IDGeneralist,
			TaskBreakdown: []router.TaskBreakdownItem{
				{SubtaskID: "a", AssignedWorker: worker.IDGeneralist, Priority: 1, DependsOn: []string{"b"}},
				{SubtaskID: "b", AssignedWorker: worker.IDGeneralist, Priority: 1, DependsOn: []string{"a"}},
			},
			RequiredPermission: router.PermissionCollaborative,
		}

		_, err := o.CreateWorkflow(decision, "cyclic", "u1", "d1", router.PermissionAutonomous)
		Expect(err).To(HaveOccurred())
		Expect(writecrewerr.IsKind(err, writecrewerr.KindCyclicDependency)).To(BeTrue())
		Expect(o.Metrics().TotalWorkflows).To(Equal(0))
	})

	It("cascades dependency_failed to dependents when the primary task fails permanently (S4)", func() {
		primary := &scriptedWorker{id: "primary", execute: failsPermanently()}
		dep1 := &scriptedWorker{id: "dep1", execute: succeeds("b")}
		dep2 := &scriptedWorker{id: "dep2", execute: succeeds("c")}
		o, _ := newOrchestrator(baseCfg, primary, dep1, dep2)

		decision := router.RoutingDecision{
			PrimaryWorkerID: "primary",
			TaskBreakdown: []router.TaskBreakdownItem{
				{SubtaskID: "A", AssignedWorker: "primary", Priority: 1},
				{SubtaskID: "B", AssignedWorker: "dep1", Priority: 2, DependsOn: []string{"A"}},
				{SubtaskID: "C", AssignedWorker: "dep2", Priority: 2, DependsOn: []string{"A"}},
			},
			RequiredPermission: router.PermissionCollaborative,
		}

		id, err := o.CreateWorkflow(decision, "cascade", "u1", "d1", router.PermissionAutonomous)
		Expect(err).ToNot(HaveOccurred())

		result, err := o.ExecuteWorkflow(context.Background(), id)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(BeEquivalentTo("failed"))

		snap, err := o.Status(id)
		Expect(err).ToNot(HaveOccurred())
		byID := map[string]string{}
		for _, ts := range snap.Tasks {
			byID[ts.TaskID] = string(ts.Status)
		}
		Expect(byID["A"]).To(Equal("failed"))
		Expect(byID["B"]).To(Equal("cancelled"))
		Expect(byID["C"]).To(Equal("cancelled"))
	})

	It("never runs more than P tasks concurrently (S5)", func() {
		w := &scriptedWorker{id: "slow", execute: sleeps(50 * time.Millisecond)}
		cfg := baseCfg
		cfg.ParallelismCap = 3
		o, _ := newOrchestrator(cfg, w)

		var items []router.TaskBreakdownItem
		for i := 0; i < 6; i++ {
			items = append(items, router.TaskBreakdownItem{
				SubtaskID: string(rune('A' + i)), AssignedWorker: "slow", Priority: 1,
			})
		}
		decision := router.RoutingDecision{PrimaryWorkerID: "slow", TaskBreakdown: items, RequiredPermission: router.PermissionCollaborative}

		id, err := o.CreateWorkflow(decision, "parallel", "u1", "d1", router.PermissionAutonomous)
		Expect(err).ToNot(HaveOccurred())

		result, err := o.ExecuteWorkflow(context.Background(), id)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(BeEquivalentTo("completed"))
		Expect(atomic.LoadInt32(&w.maxSeen)).To(BeNumerically("<=", 3))
	})

	It("cancels a running workflow within the grace period (S6)", func() {
		w := &scriptedWorker{id: "stuck", execute: never()}
		cfg := baseCfg
		cfg.CancelGracePeriod = 100 * time.Millisecond
		o, _ := newOrchestrator(cfg, w)

		decision := router.RoutingDecision{
			PrimaryWorkerID: "stuck",
			TaskBreakdown:   []router.TaskBreakdownItem{{SubtaskID: "A", AssignedWorker: "stuck", Priority: 1}},
			RequiredPermission: router.PermissionCollaborative,
		}
		id, err := o.CreateWorkflow(decision, "cancel-me", "u1", "d1", router.PermissionAutonomous)
		Expect(err).ToNot(HaveOccurred())

		var wg sync.WaitGroup
		wg.Add(1)
		var result orchestrator.WorkflowResult
		go func() {
			defer wg.Done()
			result, _ = o.ExecuteWorkflow(context.Background(), id)
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(o.Cancel(id)).To(BeTrue())
		Expect(o.Cancel(id)).To(BeFalse())

		wg.Wait()
		Expect(result.Status).To(BeEquivalentTo("cancelled"))
	})
})

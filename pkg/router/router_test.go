package router_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

func TestRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Router Suite")
}

type fakeWorker struct {
	id worker.ID
	kw map[string]struct{}
}

func (f fakeWorker) Metadata() worker.Metadata {
	return worker.Metadata{ID: f.id, Keywords: f.kw, Delegable: true}
}
func (f fakeWorker) Capabilities() worker.Capabilities { return worker.Capabilities{} }
func (f fakeWorker) Execute(context.Context, worker.TaskInput) (worker.TaskResult, error) {
	return worker.TaskResult{Status: worker.StatusCompleted, Confidence: 0.9}, nil
}
func (f fakeWorker) Health() worker.Health { return worker.Health{Healthy: true} }

func kwSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ = Describe("Router.Route", func() {
	var (
		reg *worker.Registry
		r   *router.Router
		log *logrus.Entry
	)

	BeforeEach(func() {
		reg = worker.NewRegistry()
		Expect(reg.Register(fakeWorker{id: worker.IDContentWriter, kw: kwSet("write", "article", "draft")})).To(Succeed())
		Expect(reg.Register(fakeWorker{id: worker.IDResearchAssistant, kw: kwSet("investigate", "citation", "bibliography")})).To(Succeed())
		Expect(reg.Register(fakeWorker{id: worker.IDGeneralist, kw: kwSet("write")})).To(Succeed())
		log = logrus.NewEntry(logrus.New())
		r = router.New(reg, nil, true, log)
	})

	It("routes a simple writing request to content_writer with no supporting workers", func() {
		decision := r.Route(context.Background(), router.Request{
			TaskKind:        "create",
			Content:         "Write a 900-word article on urban beekeeping",
			PermissionLevel: router.PermissionCollaborative,
		})

		Expect(decision.PrimaryWorkerID).To(Equal(worker.IDContentWriter))
		Expect(decision.SupportingWorkerIDs).To(BeEmpty())
		Expect(decision.TaskBreakdown).To(HaveLen(1))
		Expect(decision.TaskBreakdown[0].Priority).To(Equal(1))
	})

	It("flags requires_research and adds the research assistant as a supporting worker", func() {
		decision := r.Route(context.Background(), router.Request{
			Content: "Summarize the latest research on CRISPR base editing",
		})

		Expect(decision.SupportingWorkerIDs).To(ContainElement(worker.IDResearchAssistant))
	})

	It("caps supporting workers at three", func() {
		Expect(reg.Register(fakeWorker{id: worker.IDCreativeEnhancer, kw: kwSet("creative")})).To(Succeed())
		Expect(reg.Register(fakeWorker{id: worker.IDStructureArchitect, kw: kwSet("comprehensive")})).To(Succeed())
		Expect(reg.Register(fakeWorker{id: worker.IDStyleEditor, kw: kwSet("comprehensive")})).To(Succeed())

		decision := r.Route(context.Background(), router.Request{
			Content: "Write a comprehensive, detailed, creative research study with citations and sources",
		})

		Expect(len(decision.SupportingWorkerIDs)).To(BeNumerically("<=", 3))
	})

	It("falls back to the generalist when no worker scores above zero", func() {
		decision := r.Route(context.Background(), router.Request{Content: "zzz unmatched qqq"})
		Expect(decision.PrimaryWorkerID).To(Equal(worker.IDGeneralist))
	})

	It("derives assistant permission for destructive intent regardless of request preference", func() {
		decision := r.Route(context.Background(), router.Request{
			Content:         "Delete all prior drafts and overwrite with a new version",
			PermissionLevel: router.PermissionAutonomous,
		})
		Expect(decision.RequiredPermission).To(Equal(router.PermissionAssistant))
	})

	It("never elevates permission above the user-supplied restriction", func() {
		decision := r.Route(context.Background(), router.Request{
			Content:         "Suggest a few highlight edits",
			PermissionLevel: router.PermissionAssistant,
		})
		Expect(decision.RequiredPermission).To(Equal(router.PermissionAssistant))
	})

	It("is deterministic for identical input", func() {
		req := router.Request{Content: "Write a simple quick fix to this paragraph"}
		d1 := r.Route(context.Background(), req)
		d2 := r.Route(context.Background(), req)

		Expect(d1.PrimaryWorkerID).To(Equal(d2.PrimaryWorkerID))
		Expect(d1.Complexity).To(Equal(d2.Complexity))
		Expect(d1.Risk).To(Equal(d2.Risk))
		Expect(d1.RequiredPermission).To(Equal(d2.RequiredPermission))
	})

	It("accumulates routing statistics", func() {
		r.Route(context.Background(), router.Request{Content: "Write a quick fix"})
		r.Route(context.Background(), router.Request{Content: "Write another quick fix"})

		stats := r.Statistics()
		Expect(stats.TotalRouted).To(Equal(2))
	})
})

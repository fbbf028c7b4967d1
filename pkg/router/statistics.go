package router

import (
	"sync"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

// Statistics is a read-only snapshot of routing history (SPEC_FULL.md §12,
// carried forward from master_router.py's get_routing_statistics).
type Statistics struct {
	TotalRouted              int
	ByPrimaryWorker          map[worker.ID]int
	ByComplexity             map[Complexity]int
	ByRisk                   map[RiskLevel]int
	ByRequiredPermission     map[PermissionLevel]int
}

// statistics is the process-wide mutable counter set the Router owns
// exclusively, per spec §5 and §9's encapsulated-metrics-collector note.
type statistics struct {
	mu                   sync.Mutex
	total                int
	byPrimaryWorker      map[worker.ID]int
	byComplexity         map[Complexity]int
	byRisk               map[RiskLevel]int
	byRequiredPermission map[PermissionLevel]int
}

func newStatistics() *statistics {
	return &statistics{
		byPrimaryWorker:      make(map[worker.ID]int),
		byComplexity:         make(map[Complexity]int),
		byRisk:               make(map[RiskLevel]int),
		byRequiredPermission: make(map[PermissionLevel]int),
	}
}

func (s *statistics) record(d RoutingDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byPrimaryWorker[d.PrimaryWorkerID]++
	s.byComplexity[d.Complexity]++
	s.byRisk[d.Risk]++
	s.byRequiredPermission[d.RequiredPermission]++
}

func (s *statistics) snapshot() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Statistics{
		TotalRouted:          s.total,
		ByPrimaryWorker:      make(map[worker.ID]int, len(s.byPrimaryWorker)),
		ByComplexity:         make(map[Complexity]int, len(s.byComplexity)),
		ByRisk:               make(map[RiskLevel]int, len(s.byRisk)),
		ByRequiredPermission: make(map[PermissionLevel]int, len(s.byRequiredPermission)),
	}
	for k, v := range s.byPrimaryWorker {
		out.ByPrimaryWorker[k] = v
	}
	for k, v := range s.byComplexity {
		out.ByComplexity[k] = v
	}
	for k, v := range s.byRisk {
		out.ByRisk[k] = v
	}
	for k, v := range s.byRequiredPermission {
		out.ByRequiredPermission[k] = v
	}
	return out
}

// Statistics returns a snapshot of routing history (SPEC_FULL.md §12).
func (r *Router) Statistics() Statistics { return r.stats.snapshot() }

// OptimizationFlag names a worker the router's history suggests is either
// over- or under-used relative to the registered worker pool.
type OptimizationFlag struct {
	WorkerID worker.ID
	Reason   string
}

// OptimizationReport flags workers whose routed share is far from an even
// split across the registry, carried forward from master_router.py's
// optimize_routing (SPEC_FULL.md §12).
func (r *Router) OptimizationReport() []OptimizationFlag {
	snap := r.stats.snapshot()
	if snap.TotalRouted == 0 {
		return nil
	}

	workerCount := r.registry.Count()
	if workerCount == 0 {
		return nil
	}
	evenShare := 1.0 / float64(workerCount)

	var flags []OptimizationFlag
	for _, w := range r.registry.All() {
		id := w.Metadata().ID
		share := float64(snap.ByPrimaryWorker[id]) / float64(snap.TotalRouted)
		switch {
		case share > evenShare*2.5:
			flags = append(flags, OptimizationFlag{WorkerID: id, Reason: "over-used relative to registered worker pool"})
		case share < evenShare*0.25 && snap.TotalRouted >= workerCount*4:
			flags = append(flags, OptimizationFlag{WorkerID: id, Reason: "under-used relative to registered worker pool"})
		}
	}
	return flags
}

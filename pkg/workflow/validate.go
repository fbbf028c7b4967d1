package workflow

import (
	"fmt"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// marker tracks a node's DFS visitation state for cycle detection (spec
// §4.3: "DFS with a temporary/permanent marker; any back edge → reject").
type marker int

const (
	unmarked marker = iota
	temporary
	permanent
)

// Validate runs the Orchestrator's workflow-construction checks (spec
// §4.3): every dependency id must exist, the graph must be acyclic, and
// (via requiredPermission/grantedPermission) the required permission level
// must not exceed the granted one.
func (w *Workflow) Validate(requiredPermissionRank, grantedPermissionRank int) error {
	if err := w.validateDependencyReferences(); err != nil {
		return err
	}
	if err := w.validateAcyclic(); err != nil {
		return err
	}
	if requiredPermissionRank > grantedPermissionRank {
		return writecrewerr.New("workflow", "Validate", writecrewerr.KindPermissionOverreach,
			fmt.Errorf("required permission rank %d exceeds granted rank %d", requiredPermissionRank, grantedPermissionRank))
	}
	return nil
}

// validateDependencyReferences ensures every Task.Dependencies entry names a
// task id present in the same workflow (spec §3 invariant).
func (w *Workflow) validateDependencyReferences() error {
	for _, id := range w.TaskOrder {
		t := w.Tasks[id]
		for _, dep := range t.Dependencies {
			if _, ok := w.Tasks[dep]; !ok {
				return writecrewerr.New("workflow", "Validate", writecrewerr.KindInvalidRequest,
					fmt.Errorf("task %s depends on unknown task %s", t.ID, dep))
			}
		}
	}
	return nil
}

// validateAcyclic runs iterative DFS with temporary/permanent markers over
// every task's dependency edges. A dependency edge t -> dep is traversed
// dep-first (dep must complete before t), so a cycle exists iff DFS
// encounters a node already marked temporary on the current path.
func (w *Workflow) validateAcyclic() error {
	marks := make(map[string]marker, len(w.TaskOrder))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch marks[id] {
		case permanent:
			return nil
		case temporary:
			return writecrewerr.New("workflow", "Validate", writecrewerr.KindCyclicDependency,
				fmt.Errorf("cycle detected: %v -> %s", path, id))
		}

		marks[id] = temporary
		task, ok := w.Tasks[id]
		if ok {
			for _, dep := range task.Dependencies {
				if err := visit(dep, append(path, id)); err != nil {
					return err
				}
			}
		}
		marks[id] = permanent
		return nil
	}

	for _, id := range w.TaskOrder {
		if marks[id] == unmarked {
			if err := visit(id, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// Generalist is the fallback worker the router picks as primary whenever no
// registered worker scores above zero (spec §4.1 step 2). A primary worker
// unregistered after routing is not replaced by it: the scheduler fails that
// task with worker_unavailable.
type Generalist struct {
	Base
}

// NewGeneralist builds the fallback worker. generate is the narrow
// generation-backend call the worker issues for its single execution
// suspension point (spec §5).
func NewGeneralist(generate GenerateFunc, timeout time.Duration, log *logrus.Entry) *Generalist {
	meta := Metadata{
		ID:            IDGeneralist,
		Name:          "Generalist Writer",
		Keywords:      map[string]struct{}{"write": {}, "draft": {}, "create": {}, "content": {}},
		MaxInputChars: 20000,
		Delegable:     true,
	}
	caps := Capabilities{
		ConfidenceByTaskKind: map[string]float64{"create": 0.6, "edit": 0.5, "review": 0.5},
		SupportedAudiences:   []string{"general"},
		Languages:            []string{"en"},
		CollaborationReady:   true,
	}
	return &Generalist{Base: NewBase(meta, caps, generate, timeout, log)}
}

// Execute implements Worker.
func (g *Generalist) Execute(ctx context.Context, input TaskInput) (TaskResult, error) {
	start := time.Now()
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	prompt := fmt.Sprintf("Task: %s\n\nContent/context:\n%s", input.Kind, input.Content)
	content, err := g.generate(ctx, prompt, 2000)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return g.record(input.TaskID, start, TaskResult{
				Status: StatusFailed,
				Error: &TaskError{
					Kind:           string(writecrewerr.KindDeadlineExceeded),
					Message:        "generalist worker exceeded its execution timeout",
					Classification: ClassificationTransient,
				},
			}), nil
		}
		return g.record(input.TaskID, start, TaskResult{
			Status: StatusFailed,
			Error: &TaskError{
				Kind:           string(writecrewerr.KindBackendFailure),
				Message:        err.Error(),
				Classification: ClassificationTransient,
			},
		}), nil
	}

	confidence := estimateConfidence(g.meta, input)
	result := TaskResult{
		Status:     StatusCompleted,
		Content:    content,
		Confidence: confidence,
		Metadata: map[string]any{
			"collaboration_suggestions": suggestCollaboration(input.Content),
		},
	}
	return g.record(input.TaskID, start, result), nil
}

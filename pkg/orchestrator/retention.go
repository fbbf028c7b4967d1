package orchestrator

import (
	"time"

	"github.com/adhocore/gronx"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/workflow"
)

// retentionSweeper destroys terminal workflows past their retention window
// (spec §3: "destroyed after a retention period once reports have been
// emitted"), gated by a cron expression evaluated on each tick rather than a
// bespoke ticker-and-duration computation.
type retentionSweeper struct {
	cron   string
	maxAge time.Duration
	gron   gronx.Gronx
	lastAt time.Time
}

func newRetentionSweeper(cron string, maxAge time.Duration) *retentionSweeper {
	return &retentionSweeper{cron: cron, maxAge: maxAge, gron: gronx.New()}
}

// due reports whether a sweep should run at now, per the configured cron
// expression. An invalid expression disables sweeping rather than panicking:
// retention is a housekeeping concern, not a correctness one.
func (s *retentionSweeper) due(now time.Time) bool {
	if s.cron == "" {
		return false
	}
	ok, err := s.gron.IsDue(s.cron, now)
	return err == nil && ok
}

// sweep removes every terminal workflow older than maxAge from handles,
// except a completed workflow whose guardrail report has not been emitted;
// failed and cancelled workflows are removed regardless of report. Run
// under the orchestrator's lock by the caller.
func (s *retentionSweeper) sweep(now time.Time, handles map[string]*workflowHandle) []string {
	var removed []string
	for id, h := range handles {
		if !h.wf.Status.IsTerminal() {
			continue
		}
		if h.wf.Status == workflow.StatusCompleted && h.lastReport == nil {
			continue // reports not yet emitted: keep until Compose has run
		}
		if now.Sub(h.createdAt) < s.maxAge {
			continue
		}
		delete(handles, id)
		removed = append(removed, id)
	}
	return removed
}

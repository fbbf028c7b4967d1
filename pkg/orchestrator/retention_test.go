package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/workflow"
)

func handleWithStatus(status workflow.Status, age time.Duration, reported bool) *workflowHandle {
	wf := workflow.NewWorkflow("w", "name", "")
	wf.Status = status
	h := &workflowHandle{wf: wf, createdAt: time.Now().Add(-age)}
	if reported {
		h.lastReport = &guardrails.Report{}
	}
	return h
}

func TestRetentionSweepRemovesOldTerminalWorkflows(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	handles := map[string]*workflowHandle{
		"old-completed": handleWithStatus(workflow.StatusCompleted, 2*time.Hour, true),
	}

	removed := s.sweep(time.Now(), handles)

	assert.Equal(t, []string{"old-completed"}, removed)
	assert.Empty(t, handles)
}

func TestRetentionSweepKeepsYoungWorkflows(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	handles := map[string]*workflowHandle{
		"fresh": handleWithStatus(workflow.StatusCompleted, time.Minute, true),
	}

	removed := s.sweep(time.Now(), handles)

	assert.Empty(t, removed)
	assert.Len(t, handles, 1)
}

func TestRetentionSweepKeepsNonTerminalWorkflows(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	handles := map[string]*workflowHandle{
		"running": handleWithStatus(workflow.StatusRunning, 2*time.Hour, false),
	}

	removed := s.sweep(time.Now(), handles)

	assert.Empty(t, removed)
	assert.Len(t, handles, 1)
}

func TestRetentionSweepKeepsCompletedWithoutEmittedReport(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	handles := map[string]*workflowHandle{
		"unreported": handleWithStatus(workflow.StatusCompleted, 2*time.Hour, false),
	}

	removed := s.sweep(time.Now(), handles)

	assert.Empty(t, removed)
	assert.Len(t, handles, 1)
}

func TestRetentionSweepRemovesFailedAndCancelledRegardlessOfReport(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	handles := map[string]*workflowHandle{
		"failed":    handleWithStatus(workflow.StatusFailed, 2*time.Hour, false),
		"cancelled": handleWithStatus(workflow.StatusCancelled, 2*time.Hour, false),
	}

	removed := s.sweep(time.Now(), handles)

	assert.ElementsMatch(t, []string{"failed", "cancelled"}, removed)
	assert.Empty(t, handles)
}

func TestRetentionDueRejectsEmptyCron(t *testing.T) {
	s := newRetentionSweeper("", time.Hour)
	assert.False(t, s.due(time.Now()))
}

func TestRetentionDueAcceptsEveryMinuteExpression(t *testing.T) {
	s := newRetentionSweeper("* * * * *", time.Hour)
	assert.True(t, s.due(time.Now()))
}

package submission_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/orchestrator"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/submission"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

func newTestServer(t *testing.T) *submission.Server {
	reg := worker.NewRegistry()
	require.NoError(t, reg.Register(&okWorker{id: worker.IDGeneralist}))

	rt := router.New(reg, nil, false, nil)
	orch := orchestrator.New(reg, config.SchedulerConfig{ParallelismCap: 3, DefaultTaskTimeout: 2 * time.Second}, nil, nil)

	return submission.New(rt, orch, nil)
}

type okWorker struct{ id worker.ID }

func (w *okWorker) Metadata() worker.Metadata {
	return worker.Metadata{ID: w.id, Delegable: true, Keywords: map[string]struct{}{"write": {}, "article": {}}}
}
func (w *okWorker) Capabilities() worker.Capabilities { return worker.Capabilities{} }
func (w *okWorker) Health() worker.Health             { return worker.Health{Healthy: true} }
func (w *okWorker) Execute(ctx context.Context, input worker.TaskInput) (worker.TaskResult, error) {
	return worker.TaskResult{Status: worker.StatusCompleted, Content: "generated content", Confidence: 0.9}, nil
}

func TestSubmitRejectsMissingRequiredFields(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(map[string]string{"content": "no task kind"})

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRejectsInvalidEnum(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(submission.WorkflowRequest{TaskKind: "write", Content: "hello", PermissionLevel: "god-mode"})

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAcceptsValidRequestAndReturnsWorkflowID(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(submission.WorkflowRequest{TaskKind: "write an article", Content: "write about go"})

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp submission.WorkflowCreatedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.WorkflowID)
}

func TestStatusReturnsNotFoundForUnknownWorkflow(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

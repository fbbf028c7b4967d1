package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/hallucination"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/orchestrator"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/router"
)

// Server wires the §6.3 submission surface onto a chi router: POST
// /workflows submits a Request and returns a workflow_id; GET
// /workflows/{id} returns a Snapshot. Workflow execution runs in the
// background after creation, matching the spec's "blocking" execute
// contract being internal to the Orchestrator, not this boundary.
type Server struct {
	router       *router.Router
	orchestrator *orchestrator.Orchestrator
	validate     *validator.Validate
	log          *logrus.Entry

	Handler http.Handler
}

// New builds a Server and its chi route tree.
func New(rt *router.Router, orch *orchestrator.Orchestrator, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		router:       rt,
		orchestrator: orch,
		validate:     validator.New(),
		log:          log.WithField("component", "submission"),
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))
	mux.Post("/workflows", s.handleSubmit)
	mux.Get("/workflows/{id}", s.handleStatus)
	s.Handler = mux

	return s
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body WorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := toRouterRequest(body)
	decision := s.router.Route(r.Context(), req)

	workflowID, err := s.orchestrator.CreateWorkflow(decision, body.TaskKind, body.UserID, body.DocumentID, req.PermissionLevel)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	contentType := body.ContentType
	if contentType == "" {
		contentType = "article"
	}
	level := req.VerificationLevel
	if level == "" {
		level = router.VerificationStandard
	}
	_ = s.orchestrator.SetGuardrailContext(workflowID, contentType, hallucination.VerificationLevel(level), nil)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.orchestrator.ExecuteWorkflow(ctx, workflowID); err != nil {
			s.log.WithError(err).WithField("workflow_id", workflowID).Error("workflow execution failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, WorkflowCreatedResponse{WorkflowID: workflowID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.orchestrator.Status(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown workflow")
		return
	}

	resp := StatusResponse{
		WorkflowID:     snap.WorkflowID,
		Status:         string(snap.Status),
		ElapsedSeconds: snap.Elapsed.Seconds(),
	}
	for _, t := range snap.Tasks {
		ts := TaskStatusResponse{TaskID: t.TaskID, Status: string(t.Status), Attempts: t.Attempts}
		if t.Error != nil {
			ts.Error = t.Error.Message
		}
		resp.Tasks = append(resp.Tasks, ts)
	}
	if snap.Report != nil {
		accepted := snap.Report.Acceptance
		resp.Acceptance = &accepted
	}

	writeJSON(w, http.StatusOK, resp)
}

func toRouterRequest(body WorkflowRequest) router.Request {
	return router.Request{
		TaskKind:          body.TaskKind,
		Content:           body.Content,
		Context:           body.Context,
		PermissionLevel:   router.PermissionLevel(body.PermissionLevel),
		Urgency:           router.Urgency(body.Urgency),
		VerificationLevel: router.VerificationLevel(body.VerificationLevel),
		ContentType:       router.ContentType(body.ContentType),
		Audience:          body.Audience,
		PreserveVoice:     body.PreserveVoice,
		CorrectionLevel:   router.CorrectionLevel(body.CorrectionLevel),
		ProjectID:         body.ProjectID,
		DocumentID:        body.DocumentID,
		UserID:            body.UserID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

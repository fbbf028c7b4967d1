// Package submission implements the thin §6.3 boundary adapter: it exposes
// the JSON-shaped request/response contract the spec describes, with no
// auth, session state, or persistence — those remain explicit Non-goals.
package submission

// WorkflowRequest is the inbound JSON shape (spec §6.3): required
// task_kind, content; optional context, user_preferences, project_id,
// document_id, permission_level.
type WorkflowRequest struct {
	TaskKind          string            `json:"task_kind" validate:"required"`
	Content           string            `json:"content" validate:"required"`
	Context           string            `json:"context"`
	UserPreferences   map[string]string `json:"user_preferences"`
	ProjectID         string            `json:"project_id"`
	DocumentID        string            `json:"document_id"`
	UserID            string            `json:"user_id"`
	PermissionLevel   string            `json:"permission_level" validate:"omitempty,oneof=assistant collaborative semi_autonomous autonomous"`
	Urgency           string            `json:"urgency" validate:"omitempty,oneof=low normal high"`
	VerificationLevel string            `json:"verification_level" validate:"omitempty,oneof=basic standard comprehensive critical"`
	ContentType       string            `json:"content_type" validate:"omitempty,oneof=article blog_post academic_paper business_document creative_writing technical_documentation legal_document medical_document email social_media"`
	Audience          string            `json:"audience"`
	PreserveVoice     bool              `json:"preserve_voice"`
	CorrectionLevel   string            `json:"correction_level" validate:"omitempty,oneof=conservative moderate aggressive"`
}

// WorkflowCreatedResponse is POST /workflows's response body (spec §6.3).
type WorkflowCreatedResponse struct {
	WorkflowID string `json:"workflow_id"`
}

// TaskStatusResponse is one task's entry in StatusResponse.
type TaskStatusResponse struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// StatusResponse is GET /workflows/{id}'s response body (spec §6.3, §6.4):
// workflow id, status, per-task statuses, elapsed time, and — once a
// guardrail report exists — the acceptance flag. The three guardrail
// reports themselves are not included, and handleStatus does not fill
// Content or Failure.
type StatusResponse struct {
	WorkflowID     string               `json:"workflow_id"`
	Status         string               `json:"status"`
	ElapsedSeconds float64              `json:"elapsed_seconds"`
	Tasks          []TaskStatusResponse `json:"tasks"`
	Content        string               `json:"content,omitempty"`
	Acceptance     *bool                `json:"acceptance,omitempty"`
	Failure        *FailureResponse     `json:"failure,omitempty"`
}

// FailureResponse is the structured error shape spec §7 requires at the
// boundary: { kind, message, failing_task_id?, evidence }.
type FailureResponse struct {
	Kind          string   `json:"kind"`
	Message       string   `json:"message"`
	FailingTaskID string   `json:"failing_task_id,omitempty"`
	Evidence      []string `json:"evidence,omitempty"`
}

// ErrorResponse is the generic error body for 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

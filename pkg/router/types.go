// Package router analyzes an incoming Request and produces a RoutingDecision:
// primary worker, supporting workers, a dependency-aware task breakdown,
// required permission level, and risk assessment (spec §4.1).
package router

import (
	"time"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

// PermissionLevel is the closed enum from the GLOSSARY, ordered from most
// restrictive to least.
type PermissionLevel string

const (
	PermissionAssistant     PermissionLevel = "assistant"
	PermissionCollaborative PermissionLevel = "collaborative"
	PermissionSemiAutonomous PermissionLevel = "semi_autonomous"
	PermissionAutonomous    PermissionLevel = "autonomous"
)

// Rank returns an ordinal where a lower number is more restrictive, so
// "overrides downward only" (spec §4.1 step 6) is a plain min() over ranks.
func (p PermissionLevel) Rank() int {
	switch p {
	case PermissionAssistant:
		return 0
	case PermissionCollaborative:
		return 1
	case PermissionSemiAutonomous:
		return 2
	case PermissionAutonomous:
		return 3
	default:
		return 3 // unset/unknown: least restrictive, so any explicit value only ever tightens it
	}
}

// Urgency is the request's optional urgency flag (spec §3).
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// VerificationLevel controls the hallucination checker's depth (GLOSSARY).
type VerificationLevel string

const (
	VerificationBasic         VerificationLevel = "basic"
	VerificationStandard      VerificationLevel = "standard"
	VerificationComprehensive VerificationLevel = "comprehensive"
	VerificationCritical      VerificationLevel = "critical"
)

// ContentType is the closed enum from the GLOSSARY.
type ContentType string

const (
	ContentArticle               ContentType = "article"
	ContentBlogPost              ContentType = "blog_post"
	ContentAcademicPaper         ContentType = "academic_paper"
	ContentBusinessDocument      ContentType = "business_document"
	ContentCreativeWriting       ContentType = "creative_writing"
	ContentTechnicalDocumentation ContentType = "technical_documentation"
	ContentLegalDocument         ContentType = "legal_document"
	ContentMedicalDocument       ContentType = "medical_document"
	ContentEmail                 ContentType = "email"
	ContentSocialMedia           ContentType = "social_media"
)

// CorrectionLevel is a configuration option on Request (spec §3).
type CorrectionLevel string

const (
	CorrectionConservative CorrectionLevel = "conservative"
	CorrectionModerate     CorrectionLevel = "moderate"
	CorrectionAggressive   CorrectionLevel = "aggressive"
)

// Request is the caller-supplied writing request (spec §3).
type Request struct {
	TaskKind          string
	Content           string
	Context           string
	PermissionLevel   PermissionLevel
	Urgency           Urgency
	VerificationLevel VerificationLevel
	ContentType       ContentType
	Audience          string
	PreserveVoice     bool
	CorrectionLevel   CorrectionLevel
	ProjectID         string
	DocumentID        string
	UserID            string
}

// Complexity is the task-analysis complexity classification (spec §4.1 step 1).
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// RiskLevel is the task-analysis risk classification (spec §4.1 step 1).
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Analysis is the intermediate output of task analysis (spec §4.1 step 1).
// Route computes it internally; no exported function returns it.
type Analysis struct {
	Complexity            Complexity
	Risk                  RiskLevel
	RequiresResearch       bool
	RequiresCreativity     bool
	RequiresTechnical      bool
	RequiresCurrentData    bool
	RequiresExpertSources  bool
}

// TaskBreakdownItem is one entry of the RoutingDecision's task_breakdown
// (spec §3).
type TaskBreakdownItem struct {
	SubtaskID       string
	Description     string
	AssignedWorker  worker.ID
	Priority        int
	DependsOn       []string
	EstimatedDurationS int
}

// RoutingDecision is the Router's output (spec §3).
type RoutingDecision struct {
	PrimaryWorkerID     worker.ID
	SupportingWorkerIDs []worker.ID
	TaskBreakdown       []TaskBreakdownItem
	Complexity          Complexity
	Risk                RiskLevel
	RequiredPermission  PermissionLevel
	EstimatedDurationS  int
	Reasoning           string
	DecidedAt           time.Time
}

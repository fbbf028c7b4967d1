package guardrails

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/deviation"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/hallucination"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/quality"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/metrics"
)

var tracer = otel.Tracer("writecrew/guardrails")

// Pipeline runs the three guardrail checkers and composes their reports
// (spec §5: the checkers "may run concurrently; they must not observe each
// other's in-progress state and must not share mutable caches across
// checker kinds" — each checker owns its own state, so concurrent
// invocation here is safe by construction).
type Pipeline struct {
	hallucination *hallucination.Checker
	quality       *quality.Checker
	deviation     *deviation.Checker
	log           *zap.Logger
}

// NewPipeline builds a Pipeline from the three checkers.
func NewPipeline(h *hallucination.Checker, q *quality.Checker, d *deviation.Checker, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{hallucination: h, quality: q, deviation: d, log: log}
}

// Run fans the three checkers out concurrently and composes the result
// (spec §6.4).
func (p *Pipeline) Run(ctx context.Context, workflowID, content, contentType string, level hallucination.VerificationLevel, objectives []deviation.Objective) Report {
	ctx, span := tracer.Start(ctx, "guardrails.run", trace.WithAttributes(
		attribute.String("workflow.id", workflowID),
		attribute.String("content_type", contentType),
	))
	defer span.End()

	var hReport hallucination.Report
	var qReport quality.Report
	var dReport deviation.Report

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, span := tracer.Start(gctx, "guardrails.hallucination")
		defer span.End()
		hReport = p.hallucination.Check(gctx, content, level)
		metrics.RecordGuardrailScore("hallucination", hReport.RiskScore)
		return nil
	})
	g.Go(func() error {
		_, span := tracer.Start(gctx, "guardrails.quality")
		defer span.End()
		qReport = p.quality.Check(gctx, content, contentType)
		metrics.RecordGuardrailScore("quality", qReport.OverallScore)
		return nil
	})
	g.Go(func() error {
		_, span := tracer.Start(gctx, "guardrails.deviation")
		defer span.End()
		dReport = p.deviation.Check(gctx, content, objectives)
		metrics.RecordGuardrailScore("deviation", dReport.RiskScore)
		return nil
	})
	_ = g.Wait()

	report := Compose(contentType, hReport, qReport, dReport, level)
	metrics.RecordGuardrailAcceptance(report.Acceptance)
	return report
}

package deviation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

// checkCompliance implements spec §4.6 step 3: a per-objective backend
// call. On failure, the default is compliant=true, compliance_score=0.5,
// with an explanation noting verification failure — the monitor must never
// silently treat a verification failure as a violation.
func checkCompliance(ctx context.Context, gen backend.Backend, content string, obj Objective) ComplianceResult {
	if gen == nil {
		return defaultComplianceResult(obj.ID, "no generation backend configured")
	}

	resp, err := gen.Generate(ctx, backend.GenerateRequest{Prompt: buildCompliancePrompt(obj, content), MaxTokens: 400})
	if err != nil {
		return defaultComplianceResult(obj.ID, fmt.Sprintf("verification failed: %v", err))
	}

	return parseComplianceResult(obj.ID, resp.Content)
}

func defaultComplianceResult(objectiveID, explanation string) ComplianceResult {
	return ComplianceResult{
		ObjectiveID:     objectiveID,
		Compliant:       true,
		ComplianceScore: 0.5,
		Evidence:        []string{explanation},
	}
}

func buildCompliancePrompt(obj Objective, content string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Objective [%s]: %s\nCriteria: %s\nConstraints: %s\n\n",
		obj.ID, obj.Description, strings.Join(obj.MeasurableCriteria, "; "), strings.Join(obj.Constraints, "; ")))
	b.WriteString("Assess whether the following content complies. Reply as:\n")
	b.WriteString("compliant|score|violations (semicolon separated)|recommendations (semicolon separated)\n\n")
	b.WriteString(content)
	return b.String()
}

// parseComplianceResult parses "compliant|score|violations|recommendations".
func parseComplianceResult(objectiveID, text string) ComplianceResult {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "|", 4)
		if len(fields) < 2 {
			continue
		}

		compliant := strings.EqualFold(strings.TrimSpace(fields[0]), "true") ||
			strings.EqualFold(strings.TrimSpace(fields[0]), "compliant")
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			score = 0.5
		}

		result := ComplianceResult{
			ObjectiveID:     objectiveID,
			Compliant:       compliant,
			ComplianceScore: clamp01(score),
		}
		if len(fields) > 2 {
			result.Violations = splitNonEmpty(fields[2])
		}
		if len(fields) > 3 {
			result.Recommendations = splitNonEmpty(fields[3])
		}
		return result
	}

	return defaultComplianceResult(objectiveID, "unparseable compliance response")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

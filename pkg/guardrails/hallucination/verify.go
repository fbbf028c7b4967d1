package hallucination

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

var futureYearRe = regexp.MustCompile(`\b(\d{4})\b`)
var absoluteRe = regexp.MustCompile(`\b(0|100)\s?%`)

// verifyBasic applies heuristic rules only (spec §4.4 step 3, basic level).
func verifyBasic(claim Claim) VerificationResult {
	now := time.Now().Year()

	if claim.Category == CategoryDate {
		if m := futureYearRe.FindString(claim.Text); m != "" {
			if year, err := strconv.Atoi(m); err == nil {
				switch {
				case year > now:
					return VerificationResult{ClaimID: claim.ID, Verdict: VerdictFalse, Confidence: 0.9,
						Explanation: "date references a year in the future"}
				case year < 1000:
					return VerificationResult{ClaimID: claim.ID, Verdict: VerdictDisputed, Confidence: 0.6,
						Explanation: "date predates year 1000, implausible without named-era context"}
				}
			}
		}
	}

	if claim.Category == CategoryStatistic && absoluteRe.MatchString(claim.Text) {
		return VerificationResult{ClaimID: claim.ID, Verdict: VerdictDisputed, Confidence: 0.5,
			Explanation: "absolute 0%/100% statistic flagged for scrutiny"}
	}

	return VerificationResult{ClaimID: claim.ID, Verdict: VerdictUnverifiable, Confidence: 0.4,
		Explanation: "no heuristic rule matched; basic level does not call the generation backend"}
}

// verifyWithBackend implements the standard-level backend verification call
// (spec §4.4 step 3): produces a verdict, confidence, and explanation. It
// does not fill SuggestedCorrection or Sources. On failure the claim becomes
// needs_review with confidence 0.3 (spec §4.4 failure semantics).
func verifyWithBackend(ctx context.Context, gen backend.Backend, claim Claim) VerificationResult {
	if gen == nil {
		return VerificationResult{ClaimID: claim.ID, Verdict: VerdictNeedsReview, Confidence: 0.3,
			Explanation: "no generation backend configured for verification"}
	}

	prompt := "Verify this claim and respond as verdict|confidence(0-1)|explanation: " + claim.Text
	resp, err := gen.Generate(ctx, backend.GenerateRequest{Prompt: prompt, MaxTokens: 200})
	if err != nil {
		return VerificationResult{ClaimID: claim.ID, Verdict: VerdictNeedsReview, Confidence: 0.3,
			Explanation: "verification call failed: " + err.Error()}
	}

	parts := strings.SplitN(strings.TrimSpace(resp.Content), "|", 3)
	if len(parts) != 3 {
		return VerificationResult{ClaimID: claim.ID, Verdict: VerdictNeedsReview, Confidence: 0.3,
			Explanation: "verification response was malformed"}
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		confidence = 0.3
	}

	return VerificationResult{
		ClaimID:     claim.ID,
		Verdict:     normalizeVerdict(parts[0]),
		Confidence:  clamp01(confidence),
		Explanation: strings.TrimSpace(parts[2]),
	}
}

func normalizeVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return VerdictVerified
	case "disputed":
		return VerdictDisputed
	case "false":
		return VerdictFalse
	case "needs_review":
		return VerdictNeedsReview
	default:
		return VerdictUnverifiable
	}
}

// applyLevel runs the verification strategy for level against one claim,
// consulting/populating cache for the standard and comprehensive levels
// (spec §4.4 step 3).
func applyLevel(ctx context.Context, gen backend.Backend, cache *verificationCache, level VerificationLevel, claim Claim) VerificationResult {
	switch level {
	case VerificationCritical:
		// Every claim is forced to needs_review with confidence 0, to
		// force human review (spec §4.4 step 3, critical level).
		return VerificationResult{ClaimID: claim.ID, Verdict: VerdictNeedsReview, Confidence: 0,
			Explanation: "critical verification level forces human review"}

	case VerificationBasic:
		return verifyBasic(claim)

	case VerificationStandard, VerificationComprehensive:
		if cached, ok := cache.Get(claim.Text); ok {
			result := cached
			result.ClaimID = claim.ID
			return finalizeComprehensive(level, result)
		}
		result := verifyWithBackend(ctx, gen, claim)
		cache.Put(claim.Text, result)
		return finalizeComprehensive(level, result)

	default:
		return verifyBasic(claim)
	}
}

// finalizeComprehensive downgrades low-confidence verdicts to needs_review
// at the comprehensive level (spec §4.4 step 3).
func finalizeComprehensive(level VerificationLevel, result VerificationResult) VerificationResult {
	if level == VerificationComprehensive && result.Confidence < 0.7 {
		result.Verdict = VerdictNeedsReview
	}
	return result
}

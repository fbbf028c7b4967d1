package hallucination

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

// Checker implements the Hallucination Checker (spec §4.4). Its
// verification cache is process-wide and shared across Check calls, per
// spec §5; the checker itself holds no per-call mutable state.
type Checker struct {
	backend backend.Backend
	cache   *verificationCache
	log     *zap.Logger
}

// New builds a Checker. cacheCapacity is the LRU bound (SPEC_FULL.md §9,
// default ~10k when <= 0).
func New(gen backend.Backend, cacheCapacity int, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{backend: gen, cache: newVerificationCache(cacheCapacity), log: log}
}

// Check runs the full pipeline: extraction, dedup, verification,
// aggregation (spec §4.4).
func (c *Checker) Check(ctx context.Context, content string, level VerificationLevel) Report {
	claims := c.extractClaims(ctx, content, level)
	claims = dedupeAndCap(claims)

	verifications := c.verifyAll(ctx, level, claims)

	return c.aggregate(claims, verifications)
}

// extractClaims runs the pattern pass (always) and the semantic pass
// (standard and above) concurrently via errgroup, matching spec §4.4 step
// 1's "two parallel sub-passes" and the failure-isolation guarantee that
// one pass failing must not cancel the other.
func (c *Checker) extractClaims(ctx context.Context, content string, level VerificationLevel) []Claim {
	var patternClaims, semanticClaims []Claim

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patternClaims = extractPattern(content)
		return nil
	})
	if level != VerificationBasic {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					c.log.Warn("semantic extraction pass panicked", zap.Any("recover", r))
				}
			}()
			semanticClaims = extractSemantic(gctx, c.backend, content)
			return nil
		})
	}
	_ = g.Wait() // both goroutines only ever return nil; panics are contained above

	return append(patternClaims, semanticClaims...)
}

// verifyAll fans the claim set out across bounded concurrent verification
// calls (spec §5 suspension points: "guardrail calls to the generation
// backend").
func (c *Checker) verifyAll(ctx context.Context, level VerificationLevel, claims []Claim) []VerificationResult {
	results := make([]VerificationResult, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			results[i] = applyLevel(gctx, c.backend, c.cache, level, claim)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// aggregate computes overall_confidence and risk_score (spec §4.4 step 4).
func (c *Checker) aggregate(claims []Claim, verifications []VerificationResult) Report {
	report := Report{Claims: claims, Verifications: verifications, GeneratedAt: time.Now()}

	if len(verifications) == 0 {
		return report
	}

	var confidenceSum float64
	var falseCount, disputedCount, needsReviewCount float64

	for _, v := range verifications {
		confidenceSum += v.Confidence
		switch v.Verdict {
		case VerdictFalse:
			falseCount++
		case VerdictDisputed:
			disputedCount++
		case VerdictNeedsReview:
			needsReviewCount++
		}
	}

	report.OverallConfidence = confidenceSum / float64(len(verifications))
	report.RiskScore = (falseCount*1.0 + disputedCount*0.7 + needsReviewCount*0.5) / float64(len(verifications))
	report.Recommendations = buildRecommendations(falseCount, disputedCount, needsReviewCount)

	return report
}

func buildRecommendations(falseCount, disputedCount, needsReviewCount float64) []string {
	var recs []string
	if falseCount > 0 {
		recs = append(recs, fmt.Sprintf("remove or correct %d claim(s) verified as false", int(falseCount)))
	}
	if disputedCount > 0 {
		recs = append(recs, fmt.Sprintf("add supporting sources for %d disputed claim(s)", int(disputedCount)))
	}
	if needsReviewCount > 0 {
		recs = append(recs, fmt.Sprintf("route %d claim(s) to human review", int(needsReviewCount)))
	}
	return recs
}

package hallucination

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

const (
	maxClaims        = 50
	maxSemanticClaims = 20
)

var (
	percentageRe  = regexp.MustCompile(`\b\d+(\.\d+)?\s?%`)
	largeNumberRe = regexp.MustCompile(`\b\d{4,}(,\d{3})*\b`)
	comparativeRe = regexp.MustCompile(`(?i)\b(more than|less than|nearly|almost|over|under)\s+\d+`)

	monthRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`)
	numericDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	yearInContextRe = regexp.MustCompile(`(?i)\b(in|since|by|founded in)\s+(\d{4})\b`)

	quotedRe = regexp.MustCompile(`"([^"]{20,200})"`)

	foundingRe = regexp.MustCompile(`(?i)\bfounded in (\d{4})\b`)
	superlativeRe = regexp.MustCompile(`(?i)\b(the first|the largest|the only|the best|the most)\b[^.]{0,80}`)
)

// extractPattern implements spec §4.4 step 1's pattern pass: it always
// runs, matching statistics/date/quote/superlative regex families, each
// producing a Claim with confidence 0.7 and its character span.
func extractPattern(content string) []Claim {
	var claims []Claim
	add := func(category Category, loc []int) {
		claims = append(claims, Claim{
			ID:         uuid.NewString(),
			Text:       content[loc[0]:loc[1]],
			Category:   category,
			Confidence: 0.7,
			Sentence:   enclosingSentence(content, loc[0], loc[1]),
			Span:       Span{Start: loc[0], End: loc[1]},
		})
	}

	for _, re := range []*regexp.Regexp{percentageRe, largeNumberRe, comparativeRe} {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			add(CategoryStatistic, loc)
		}
	}
	for _, re := range []*regexp.Regexp{monthRe, numericDateRe, yearInContextRe} {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			add(CategoryDate, loc)
		}
	}
	for _, loc := range quotedRe.FindAllStringIndex(content, -1) {
		add(CategoryQuote, loc)
	}
	for _, re := range []*regexp.Regexp{foundingRe, superlativeRe} {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			add(CategoryFact, loc)
		}
	}

	return claims
}

// extractSemantic implements spec §4.4 step 1's semantic pass (standard and
// above): a single generation-backend call extracting at most 20 claims.
// The response format expected is one claim per line:
// "category|confidence|text". Malformed lines are skipped rather than
// failing the whole pass (spec §4.4: extraction failure of one pass must
// not cancel the other).
func extractSemantic(ctx context.Context, gen backend.Backend, content string) []Claim {
	if gen == nil {
		return nil
	}

	prompt := "Extract up to 20 factual claims from the following content. " +
		"Respond one claim per line as category|confidence(0-1)|claim text. " +
		"Categories: statistic, date, quote, fact, other.\n\n" + content

	resp, err := gen.Generate(ctx, backend.GenerateRequest{Prompt: prompt, MaxTokens: 1500})
	if err != nil {
		return nil
	}

	var claims []Claim
	for _, line := range strings.Split(resp.Content, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), "|", 3)
		if len(parts) != 3 {
			continue
		}
		confidence, parseErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if parseErr != nil {
			continue
		}
		text := strings.TrimSpace(parts[2])
		if text == "" {
			continue
		}
		claims = append(claims, Claim{
			ID:         uuid.NewString(),
			Text:       text,
			Category:   normalizeCategory(parts[0]),
			Confidence: clamp01(confidence),
			Sentence:   text,
		})
		if len(claims) >= maxSemanticClaims {
			break
		}
	}
	return claims
}

func normalizeCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "statistic":
		return CategoryStatistic
	case "date":
		return CategoryDate
	case "quote":
		return CategoryQuote
	case "fact":
		return CategoryFact
	default:
		return CategoryOther
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// enclosingSentence returns the sentence containing [start,end), a coarse
// split on sentence-ending punctuation.
func enclosingSentence(content string, start, end int) string {
	sentStart := strings.LastIndexAny(content[:start], ".!?") + 1
	rel := strings.IndexAny(content[end:], ".!?")
	sentEnd := len(content)
	if rel >= 0 {
		sentEnd = end + rel + 1
	}
	return strings.TrimSpace(content[sentStart:sentEnd])
}

// dedupeAndCap implements spec §4.4 step 2: normalize claim text (lowercase,
// collapse whitespace), keep first occurrence, cap total claims at 50.
func dedupeAndCap(claims []Claim) []Claim {
	seen := make(map[string]struct{}, len(claims))
	var out []Claim
	for _, c := range claims {
		key := normalizeText(c.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) >= maxClaims {
			break
		}
	}
	return out
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

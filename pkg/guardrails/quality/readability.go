package quality

import (
	"strings"
	"unicode"
)

// basicMetrics implements spec §4.5 step 1: word/sentence/paragraph counts,
// unique-word count, character count. Pure function over content, enabling
// straightforward property-based tests per SPEC_FULL.md §9's design note.
func basicMetrics(content string) BasicMetrics {
	words := strings.Fields(content)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))] = struct{}{}
	}

	paragraphs := 0
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	if paragraphs == 0 && strings.TrimSpace(content) != "" {
		paragraphs = 1
	}

	return BasicMetrics{
		WordCount:       len(words),
		SentenceCount:   countSentences(content),
		ParagraphCount:  paragraphs,
		UniqueWordCount: len(unique),
		CharacterCount:  len([]rune(content)),
	}
}

func countSentences(content string) int {
	count := 0
	for _, r := range content {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(content) != "" {
		count = 1
	}
	return count
}

// countSyllables is the simplified vowel-group syllable counter from spec
// §4.5 step 2: count vowel groups; subtract one for a trailing silent 'e'
// when more than one syllable results; minimum 1.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
	if word == "" {
		return 0
	}

	isVowel := func(r rune) bool {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			return true
		}
		return false
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

// fleschKincaidGrade computes the Flesch-Kincaid grade level from average
// sentence length and average syllables per word (spec §4.5 step 2).
func fleschKincaidGrade(content string) float64 {
	metrics := basicMetrics(content)
	words := strings.Fields(content)
	if metrics.SentenceCount == 0 || len(words) == 0 {
		return 0
	}

	totalSyllables := 0
	for _, w := range words {
		totalSyllables += countSyllables(w)
	}

	avgSentenceLen := float64(metrics.WordCount) / float64(metrics.SentenceCount)
	avgSyllablesPerWord := float64(totalSyllables) / float64(len(words))

	return 0.39*avgSentenceLen + 11.8*avgSyllablesPerWord - 15.59
}

// readabilityScore maps a Flesch-Kincaid grade level to a 0-5 score (spec
// §4.5 step 2): score = clamp(5 − (g − 8)/4, 0, 5).
func readabilityScore(grade float64) float64 {
	score := 5 - (grade-8)/4
	if score < 0 {
		return 0
	}
	if score > 5 {
		return 5
	}
	return score
}

package evaluator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	baseScore = 50

	shortPromptWords   = 10
	mediumPromptWords  = 30
	longPromptWords    = 100
	shortPromptDelta   = -10
	mediumPromptDelta  = 10
	longPromptDelta    = 15
	verbosePromptDelta = -5

	questionDelta      = 5
	multiSentenceDelta = 5
	formatHintDelta    = 5

	minPromptLength = 5
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	formatHint    = regexp.MustCompile(`(?i)bullet|numbered|list|steps|points|format:|output:|return:`)
)

// BaseScore scores a prompt on shape alone: length, questions, sentence count
// and formatting hints. It never depends on Criteria.
func BaseScore(prompt string) int {
	score := baseScore + lengthDelta(len(strings.Fields(prompt)))

	if strings.Contains(prompt, "?") {
		score += questionDelta
	}
	if countSentences(prompt) > 1 {
		score += multiSentenceDelta
	}
	if formatHint.MatchString(prompt) {
		score += formatHintDelta
	}
	return score
}

// lengthDelta leaves exactly shortPromptWords words unadjusted.
func lengthDelta(words int) int {
	switch {
	case words < shortPromptWords:
		return shortPromptDelta
	case words > shortPromptWords && words <= mediumPromptWords:
		return mediumPromptDelta
	case words > mediumPromptWords && words <= longPromptWords:
		return longPromptDelta
	case words > longPromptWords:
		return verbosePromptDelta
	}
	return 0
}

func countSentences(prompt string) int {
	n := 0
	for _, segment := range sentenceSplit.Split(prompt, -1) {
		if strings.TrimSpace(segment) != "" {
			n++
		}
	}
	return n
}

// TooShort reports whether a prompt has fewer than minPromptLength
// characters once trimmed.
func TooShort(prompt string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(prompt)) < minPromptLength
}

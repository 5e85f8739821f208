package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesize(t *testing.T) {
	testCases := []struct {
		name       string
		original   string
		weaknesses []string
		chooser    Chooser
		expected   string
	}{
		{
			name:     "no weaknesses returns original verbatim",
			original: "  keep my spacing  ",
			chooser:  FixedChooser(0),
			expected: "  keep my spacing  ",
		},
		{
			name:       "examples weakness only trims and terminates",
			original:   "  Explain gravity  ",
			weaknesses: []string{WeaknessNeedsExamples},
			chooser:    FixedChooser(0),
			expected:   "Explain gravity.",
		},
		{
			name:       "ambiguity keeps existing terminal punctuation",
			original:   "Why is the sky blue?",
			weaknesses: []string{WeaknessAmbiguousTerms},
			chooser:    FixedChooser(0),
			expected:   "Why is the sky blue?",
		},
		{
			name:       "request opener is not duplicated",
			original:   "what about cats",
			weaknesses: []string{WeaknessNoClearRequest},
			chooser:    FixedChooser(0),
			expected:   "what about cats.",
		},
		{
			name:       "opener check is case-insensitive",
			original:   "HOWEVER you like",
			weaknesses: []string{WeaknessNoClearRequest},
			chooser:    FixedChooser(0),
			expected:   "HOWEVER you like.",
		},
		{
			name:       "chooser drives both phrases",
			original:   "cats",
			weaknesses: []string{WeaknessNoClearRequest, WeaknessNoFormat},
			chooser:    NewSequenceChooser(2, 1),
			expected:   "Provide information about cats in a step-by-step guide.",
		},
		{
			name:       "additions keep fixed order",
			original:   "Summarize the news!",
			weaknesses: []string{WeaknessNoFormat, WeaknessNoConstraints, WeaknessNoContext},
			chooser:    FixedChooser(3),
			expected:   "Summarize the news! for a general audience in a concise manner with examples.",
		},
		{
			name:       "unknown weakness only terminates",
			original:   "Draft a memo",
			weaknesses: []string{"Prompt is rude"},
			chooser:    FixedChooser(0),
			expected:   "Draft a memo.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewRewriter(tc.chooser)
			got := w.Synthesize(tc.original, Result{Weaknesses: tc.weaknesses})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSynthesizeUsesEveryPhrase(t *testing.T) {
	seen := map[string]bool{}
	for i := range FormatPhrases {
		w := NewRewriter(FixedChooser(i))
		seen[w.Synthesize("List cats", Result{Weaknesses: []string{WeaknessNoFormat}})] = true
	}
	assert.Len(t, seen, len(FormatPhrases))
}

func TestNewRewriterDefaultsToRandom(t *testing.T) {
	w := NewRewriter(nil)
	assert.IsType(t, &RandomChooser{}, w.chooser)
}

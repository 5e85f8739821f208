package evaluator

import (
	"strings"
)

var (
	// ActionPhrases are prepended when a prompt lacks a clear request.
	ActionPhrases = []string{"Explain", "Describe", "Provide information about", "Analyze", "Summarize"}
	// FormatPhrases are appended when a prompt names no output format.
	FormatPhrases = []string{"in bullet points", "in a step-by-step guide", "in a structured paragraph", "with examples"}

	requestOpeners = []string{"explain", "describe", "what", "how", "why", "when", "where", "who", "which"}
)

const (
	contextAddition     = "for a general audience"
	constraintsAddition = "in a concise manner"
)

// Rewriter turns the weaknesses of a Result into an augmented prompt.
type Rewriter struct {
	chooser Chooser
}

func NewRewriter(chooser Chooser) *Rewriter {
	if chooser == nil {
		chooser = NewRandomChooser()
	}
	return &Rewriter{chooser: chooser}
}

// Synthesize returns original untouched when r has no weaknesses. Ambiguous
// terms and missing examples produce no edit.
func (w *Rewriter) Synthesize(original string, r Result) string {
	if len(r.Weaknesses) == 0 {
		return original
	}

	improved := strings.TrimSpace(original)

	if r.HasWeakness(WeaknessNoClearRequest) && !startsWithRequest(improved) {
		improved = w.pick(ActionPhrases) + " " + improved
	}

	var additions []string
	if r.HasWeakness(WeaknessNoContext) {
		additions = append(additions, contextAddition)
	}
	if r.HasWeakness(WeaknessNoConstraints) {
		additions = append(additions, constraintsAddition)
	}
	if r.HasWeakness(WeaknessNoFormat) {
		additions = append(additions, w.pick(FormatPhrases))
	}
	if len(additions) > 0 {
		improved += " " + strings.Join(additions, " ")
	}

	if !strings.HasSuffix(improved, ".") && !strings.HasSuffix(improved, "!") && !strings.HasSuffix(improved, "?") {
		improved += "."
	}
	return improved
}

func (w *Rewriter) pick(options []string) string {
	return options[w.chooser.Choose(len(options))]
}

func startsWithRequest(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, opener := range requestOpeners {
		if strings.HasPrefix(lower, opener) {
			return true
		}
	}
	return false
}

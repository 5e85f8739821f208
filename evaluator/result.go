package evaluator

import "slices"

// Weakness texts double as lookup keys for the rewriter and must not change.
const (
	WeaknessTooShort       = "Prompt is too short or empty"
	WeaknessNoClearRequest = "Prompt lacks a clear request"
	WeaknessAmbiguousTerms = "Prompt contains ambiguous terms"
	WeaknessNoContext      = "Prompt lacks context"
	WeaknessNoConstraints  = "Prompt doesn't specify constraints"
	WeaknessNeedsExamples  = "Prompt could benefit from examples"
	WeaknessNoFormat       = "Prompt doesn't specify desired output format"
)

const (
	StrengthClearRequest = "Prompt contains a clear request"
	StrengthContext      = "Prompt provides context for the request"
	StrengthConstraints  = "Prompt specifies constraints"
	StrengthExamples     = "Prompt includes examples"
	StrengthFormat       = "Prompt specifies desired output format"
)

const (
	SuggestionTooShort       = "Provide a more detailed prompt"
	SuggestionActionWord     = "Start with a specific action word like 'explain', 'describe', or 'list'"
	SuggestionAmbiguousTerms = "Replace vague terms like 'thing', 'stuff', or 'etc' with specific descriptions"
	SuggestionContext        = "Add context about the target audience or situation"
	SuggestionConstraints    = "Add constraints like length, format, or specific requirements"
	SuggestionExamples       = "Include examples to clarify your request"
	SuggestionFormat         = "Specify the desired format (e.g., bullet points, paragraph, step-by-step guide)"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Result is the feedback for one prompt. The remote feedback path produces
// the same shape.
type Result struct {
	Score          int      `json:"score" yaml:"score"`
	Strengths      []string `json:"strengths" yaml:"strengths"`
	Weaknesses     []string `json:"weaknesses" yaml:"weaknesses"`
	Suggestions    []string `json:"suggestions" yaml:"suggestions"`
	ImprovedPrompt string   `json:"improvedPrompt" yaml:"improvedPrompt"`
}

func newResult() *Result {
	return &Result{
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: []string{},
	}
}

// HasWeakness reports whether the exact weakness text is present.
func (r Result) HasWeakness(weakness string) bool {
	return slices.Contains(r.Weaknesses, weakness)
}

// Clone returns a deep copy so callers can keep results without sharing slices.
func (r Result) Clone() Result {
	return Result{
		Score:          r.Score,
		Strengths:      cloneStrings(r.Strengths),
		Weaknesses:     cloneStrings(r.Weaknesses),
		Suggestions:    cloneStrings(r.Suggestions),
		ImprovedPrompt: r.ImprovedPrompt,
	}
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (r *Result) apply(o Outcome) {
	r.Score += o.Delta
	if o.Strength != "" {
		r.Strengths = append(r.Strengths, o.Strength)
	}
	if o.Weakness != "" {
		r.Weaknesses = append(r.Weaknesses, o.Weakness)
	}
	if o.Suggestion != "" {
		r.Suggestions = append(r.Suggestions, o.Suggestion)
	}
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}

package evaluator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern is a case-insensitive set of terms. With WholeWord set, each term
// must sit on word boundaries, except at an edge where the term itself ends
// in punctuation (such as "e.g.").
type Pattern struct {
	Terms     []string
	WholeWord bool
}

// Outcome is what a check contributes to a Result.
type Outcome struct {
	Delta      int
	Strength   string
	Weakness   string
	Suggestion string
}

// Check is one row of the heuristic table.
type Check struct {
	Name      string
	Criterion string
	Pattern   Pattern
	OnMatch   Outcome
	OnMiss    Outcome
	// MissGuard, when set, must match for OnMiss to apply.
	MissGuard *Pattern
}

// DefaultChecks returns the built-in table in evaluation order.
func DefaultChecks() []Check {
	return []Check{
		{
			Name:      "clarity/request",
			Criterion: CriterionClarity,
			Pattern: Pattern{
				Terms: []string{"explain", "describe", "what is", "how to", "why", "when", "where", "who", "which"},
			},
			OnMatch: Outcome{Delta: 5, Strength: StrengthClearRequest},
			OnMiss:  Outcome{Delta: -5, Weakness: WeaknessNoClearRequest, Suggestion: SuggestionActionWord},
		},
		{
			Name:      "clarity/ambiguity",
			Criterion: CriterionClarity,
			Pattern: Pattern{
				Terms:     []string{"thing", "stuff", "etc", "and so on", "something"},
				WholeWord: true,
			},
			OnMatch: Outcome{Delta: -5, Weakness: WeaknessAmbiguousTerms, Suggestion: SuggestionAmbiguousTerms},
		},
		{
			Name:      "context",
			Criterion: CriterionContext,
			Pattern: Pattern{
				Terms: []string{
					"background", "context", "given that", "assuming", "in the context of",
					"for a", "as a", "considering", "taking into account",
				},
				WholeWord: true,
			},
			OnMatch: Outcome{Delta: 10, Strength: StrengthContext},
			OnMiss:  Outcome{Delta: -5, Weakness: WeaknessNoContext, Suggestion: SuggestionContext},
		},
		{
			Name:      "constraints",
			Criterion: CriterionConstraints,
			Pattern: Pattern{
				Terms: []string{
					"limit", "only", "must", "should", "no more than", "at least",
					"maximum", "minimum", "between", "not", "exclude", "don't",
				},
				WholeWord: true,
			},
			OnMatch: Outcome{Delta: 10, Strength: StrengthConstraints},
			OnMiss:  Outcome{Weakness: WeaknessNoConstraints, Suggestion: SuggestionConstraints},
		},
		{
			Name:      "examples",
			Criterion: CriterionExamples,
			Pattern: Pattern{
				Terms: []string{
					"example", "such as", "like", "for instance", "e.g.",
					"for example", "sample", "illustration",
				},
				WholeWord: true,
			},
			OnMatch: Outcome{Delta: 10, Strength: StrengthExamples},
			OnMiss:  Outcome{Weakness: WeaknessNeedsExamples, Suggestion: SuggestionExamples},
			MissGuard: &Pattern{
				Terms: []string{
					"complex", "technical", "advanced", "difficult", "complicated",
					"explain", "concept", "theory", "process", "procedure",
				},
				WholeWord: true,
			},
		},
		{
			Name:      "format",
			Criterion: CriterionFormat,
			Pattern: Pattern{
				Terms: []string{
					"format", "structure", "style", "in the form of", "as a",
					"bullet points", "numbered list", "table", "diagram", "step by step",
					"summary", "essay", "report", "analysis", "review",
				},
				WholeWord: true,
			},
			OnMatch: Outcome{Delta: 10, Strength: StrengthFormat},
			OnMiss:  Outcome{Weakness: WeaknessNoFormat, Suggestion: SuggestionFormat},
		},
	}
}

// Compile builds the regular expression for p.
func (p Pattern) Compile() (*regexp.Regexp, error) {
	if len(p.Terms) == 0 {
		return nil, fmt.Errorf("pattern has no terms")
	}
	alternatives := make([]string, 0, len(p.Terms))
	for _, term := range p.Terms {
		if term == "" {
			return nil, fmt.Errorf("pattern has an empty term")
		}
		expr := regexp.QuoteMeta(term)
		if p.WholeWord {
			first, _ := utf8.DecodeRuneInString(term)
			last, _ := utf8.DecodeLastRuneInString(term)
			if isWordRune(first) {
				expr = `\b` + expr
			}
			if isWordRune(last) {
				expr += `\b`
			}
		}
		alternatives = append(alternatives, expr)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(alternatives, "|") + `)`)
}

func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

type compiledCheck struct {
	Check
	match *regexp.Regexp
	guard *regexp.Regexp
}

func compileChecks(checks []Check) ([]compiledCheck, error) {
	compiled := make([]compiledCheck, 0, len(checks))
	for _, c := range checks {
		if !slices.Contains(CriterionNames(), c.Criterion) {
			return nil, fmt.Errorf("check %q has unknown criterion %q", c.Name, c.Criterion)
		}
		match, err := c.Pattern.Compile()
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", c.Name, err)
		}
		cc := compiledCheck{Check: c, match: match}
		if c.MissGuard != nil {
			cc.guard, err = c.MissGuard.Compile()
			if err != nil {
				return nil, fmt.Errorf("check %q guard: %w", c.Name, err)
			}
		}
		compiled = append(compiled, cc)
	}
	return compiled, nil
}

// run applies the check to r and reports whether the pattern matched.
func (c compiledCheck) run(prompt string, r *Result) bool {
	if c.match.MatchString(prompt) {
		r.apply(c.OnMatch)
		return true
	}
	if c.guard == nil || c.guard.MatchString(prompt) {
		r.apply(c.OnMiss)
	}
	return false
}

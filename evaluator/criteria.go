package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

// Criterion names, in the order their checks run.
const (
	CriterionClarity     = "clarity"
	CriterionContext     = "context"
	CriterionConstraints = "constraints"
	CriterionExamples    = "examples"
	CriterionFormat      = "format"
)

// CriterionNames returns every criterion name in evaluation order.
func CriterionNames() []string {
	return []string{CriterionClarity, CriterionContext, CriterionConstraints, CriterionExamples, CriterionFormat}
}

// Criteria selects which heuristic checks run for one evaluation.
// The base score is computed regardless of these flags.
type Criteria struct {
	Clarity     bool `json:"clarity" yaml:"clarity"`
	Context     bool `json:"context" yaml:"context"`
	Constraints bool `json:"constraints" yaml:"constraints"`
	Examples    bool `json:"examples" yaml:"examples"`
	Format      bool `json:"format" yaml:"format"`
}

// AllCriteria enables every check.
func AllCriteria() Criteria {
	return Criteria{Clarity: true, Context: true, Constraints: true, Examples: true, Format: true}
}

// CriteriaFromMap builds Criteria from loosely typed flags. Missing names are
// disabled; unknown names are rejected.
func CriteriaFromMap(flags map[string]bool) (Criteria, error) {
	var c Criteria
	var unknown []string
	for name, enabled := range flags {
		if !c.set(strings.ToLower(strings.TrimSpace(name)), enabled) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Criteria{}, fmt.Errorf("unknown criteria: %s", strings.Join(unknown, ", "))
	}
	return c, nil
}

// Enabled reports whether the named criterion is on. Unknown names are off.
func (c Criteria) Enabled(name string) bool {
	switch name {
	case CriterionClarity:
		return c.Clarity
	case CriterionContext:
		return c.Context
	case CriterionConstraints:
		return c.Constraints
	case CriterionExamples:
		return c.Examples
	case CriterionFormat:
		return c.Format
	}
	return false
}

// EnabledNames lists the enabled criteria in evaluation order.
func (c Criteria) EnabledNames() []string {
	var names []string
	for _, name := range CriterionNames() {
		if c.Enabled(name) {
			names = append(names, name)
		}
	}
	return names
}

// Map returns all five flags keyed by name.
func (c Criteria) Map() map[string]bool {
	m := make(map[string]bool, 5)
	for _, name := range CriterionNames() {
		m[name] = c.Enabled(name)
	}
	return m
}

func (c Criteria) None() bool {
	return len(c.EnabledNames()) == 0
}

func (c *Criteria) set(name string, enabled bool) bool {
	switch name {
	case CriterionClarity:
		c.Clarity = enabled
	case CriterionContext:
		c.Context = enabled
	case CriterionConstraints:
		c.Constraints = enabled
	case CriterionExamples:
		c.Examples = enabled
	case CriterionFormat:
		c.Format = enabled
	default:
		return false
	}
	return true
}

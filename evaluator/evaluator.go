// Package evaluator scores LLM prompts with a fixed table of keyword
// heuristics and rewrites them to address the weaknesses it finds.
//
// The engine is synchronous and keeps no state between calls; an Evaluator
// may be shared by concurrent goroutines.
package evaluator

import (
	"fmt"

	"github.com/guiperry/promptfeedback/utils"
)

type Evaluator struct {
	checks   []compiledCheck
	rewriter *Rewriter
	logger   utils.Logger
}

type Option func(*options)

type options struct {
	checks  []Check
	chooser Chooser
	logger  utils.Logger
}

// WithChooser injects the random source used by the rewriter.
func WithChooser(chooser Chooser) Option {
	return func(o *options) {
		o.chooser = chooser
	}
}

// WithChecks replaces the built-in check table.
func WithChecks(checks []Check) Option {
	return func(o *options) {
		o.checks = checks
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds an Evaluator from the default table. It panics only if the
// built-in table fails to compile; use NewWithChecks for custom tables.
func New(opts ...Option) *Evaluator {
	e, err := build(opts)
	if err != nil {
		panic(fmt.Sprintf("evaluator: %v", err))
	}
	return e
}

// NewWithChecks is New with error reporting for caller-supplied tables.
func NewWithChecks(checks []Check, opts ...Option) (*Evaluator, error) {
	return build(append(opts, WithChecks(checks)))
}

func build(opts []Option) (*Evaluator, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.checks == nil {
		o.checks = DefaultChecks()
	}
	if o.logger == nil {
		o.logger = utils.NewNopLogger()
	}
	compiled, err := compileChecks(o.checks)
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		checks:   compiled,
		rewriter: NewRewriter(o.chooser),
		logger:   o.logger,
	}, nil
}

// Evaluate scores prompt against the enabled criteria. It never fails: the
// returned Result always has a score in [0,100].
func (e *Evaluator) Evaluate(prompt string, criteria Criteria) Result {
	r := newResult()

	if TooShort(prompt) {
		r.Weaknesses = append(r.Weaknesses, WeaknessTooShort)
		r.Suggestions = append(r.Suggestions, SuggestionTooShort)
		e.logger.Debug("Prompt too short, skipping checks", "length", len(prompt))
		return *r
	}

	r.Score = BaseScore(prompt)
	e.logger.Debug("Base score computed", "score", r.Score)

	for _, name := range CriterionNames() {
		if !criteria.Enabled(name) {
			continue
		}
		for _, c := range e.checks {
			if c.Criterion != name {
				continue
			}
			matched := c.run(prompt, r)
			e.logger.Debug("Check evaluated", "check", c.Name, "matched", matched, "score", r.Score)
		}
	}

	r.ImprovedPrompt = e.rewriter.Synthesize(prompt, *r)
	r.Score = ClampScore(r.Score)

	e.logger.Debug("Prompt evaluated", "score", r.Score, "weaknesses", len(r.Weaknesses))
	return *r
}

// Synthesize exposes the rewriter for results produced elsewhere.
func (e *Evaluator) Synthesize(original string, r Result) string {
	return e.rewriter.Synthesize(original, r)
}

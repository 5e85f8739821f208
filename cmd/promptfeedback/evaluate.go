package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/feedback"
	"github.com/guiperry/promptfeedback/report"
)

type evaluateFlags struct {
	criteriaFile string
	useLLM       bool
	asJSON       bool
	seed         uint64
}

func newEvaluateCmd(root *rootFlags) *cobra.Command {
	flags := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate [prompt]",
		Short: "Evaluate a prompt",
		Long: `Evaluate scores the prompt given as arguments, or read from standard input
when no arguments are given, and prints strengths, weaknesses, suggestions and
an improved prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, root, flags, args)
		},
	}

	f := cmd.Flags()
	for _, name := range evaluator.CriterionNames() {
		f.Bool(name, true, "Enable the "+name+" check")
	}
	f.StringVar(&flags.criteriaFile, "criteria-file", "", "YAML file of criterion flags")
	f.BoolVar(&flags.useLLM, "llm", false, "Ask the LLM for feedback instead of using heuristics (defaults to $PF_USE_LLM)")
	f.BoolVar(&flags.asJSON, "json", false, "Print the result as JSON")
	f.Uint64Var(&flags.seed, "seed", 0, "Seed for the rewriter's random choices (0 picks randomly)")
	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootFlags, flags *evaluateFlags, args []string) error {
	prompt, err := readPrompt(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	criteria, err := resolveCriteria(cmd, flags.criteriaFile)
	if err != nil {
		return err
	}

	opts := []config.ConfigOption{config.SetCriteria(criteria)}
	if cmd.Flags().Changed("llm") {
		opts = append(opts, config.SetUseLLM(flags.useLLM))
	}
	cfg, err := loadConfig(root, opts...)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, flags.seed)
	if err != nil {
		return err
	}

	resp, err := svc.Get(cmd.Context(), feedback.Request{
		Prompt:   prompt,
		Criteria: criteria,
		UseLLM:   cfg.UseLLM,
	})
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp, flags.asJSON)
}

func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", feedback.ErrEmptyPrompt
	}
	return prompt, nil
}

// resolveCriteria starts from every check enabled, applies the criteria
// file and then any criterion flag set explicitly.
func resolveCriteria(cmd *cobra.Command, path string) (evaluator.Criteria, error) {
	criteria := evaluator.AllCriteria()
	if path != "" {
		var err error
		if criteria, err = config.LoadCriteriaFile(path); err != nil {
			return evaluator.Criteria{}, err
		}
	}

	overrides := map[string]bool{}
	for _, name := range evaluator.CriterionNames() {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return evaluator.Criteria{}, err
		}
		overrides[name] = v
	}
	if len(overrides) == 0 {
		return criteria, nil
	}

	merged := criteria.Map()
	for name, v := range overrides {
		merged[name] = v
	}
	return evaluator.CriteriaFromMap(merged)
}

func printResponse(out io.Writer, resp feedback.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Source == feedback.SourceFallback {
		_, _ = fmt.Fprintln(out, "LLM feedback failed; showing heuristic evaluation.")
	}
	_, err := fmt.Fprint(out, report.Render(resp.Result))
	return err
}

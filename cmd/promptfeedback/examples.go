package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/feedback"
	"github.com/guiperry/promptfeedback/report"
)

var examplePrompts = []string{
	"Tell me about AI",
	"Explain the concept of quantum computing to a high school student",
	"Write a detailed analysis of climate change impacts, including examples and data, formatted as a report with sections for different regions of the world",
}

func newExamplesCmd(root *rootFlags) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Evaluate the bundled example prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, seed)
			if err != nil {
				return err
			}

			items := make([]feedback.BatchItem, len(examplePrompts))
			for i, prompt := range examplePrompts {
				items[i] = feedback.BatchItem{
					Name:    fmt.Sprintf("Prompt #%d", i+1),
					Request: feedback.Request{Prompt: prompt, Criteria: evaluator.AllCriteria(), UseLLM: cfg.UseLLM},
				}
			}

			out := cmd.OutOrStdout()
			for i, res := range svc.EvaluateBatch(cmd.Context(), items) {
				if res.Error != nil {
					return fmt.Errorf("%s: %w", res.Name, res.Error)
				}
				_, _ = fmt.Fprintf(out, "\nEvaluating %s: %q\n%s\n", res.Name, examplePrompts[i], strings.Repeat("-", 50))
				_, _ = fmt.Fprint(out, report.Render(res.Response.Result))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the rewriter's random choices (0 picks randomly)")
	return cmd
}

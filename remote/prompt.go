package remote

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/guiperry/promptfeedback/evaluator"
)

// Feedback is the JSON document the model is asked to return.
type Feedback struct {
	Score          *float64 `json:"score" jsonschema:"minimum=0,maximum=100,description=Overall prompt quality" validate:"required"`
	Strengths      []string `json:"strengths" jsonschema:"description=What the prompt does well"`
	Weaknesses     []string `json:"weaknesses" jsonschema:"description=What the prompt lacks"`
	Suggestions    []string `json:"suggestions" jsonschema:"description=Concrete improvements"`
	ImprovedPrompt string   `json:"improvedPrompt" jsonschema:"description=A rewritten version of the prompt"`
}

var criterionDescriptions = map[string]string{
	evaluator.CriterionClarity:     "clarity (is it clear and specific)",
	evaluator.CriterionContext:     "context (does it provide necessary context)",
	evaluator.CriterionConstraints: "constraints (does it specify limitations or requirements)",
	evaluator.CriterionExamples:    "examples (does it include examples if needed)",
	evaluator.CriterionFormat:      "format (does it specify desired output format)",
}

const systemPromptIntro = `You are an expert prompt engineer. Evaluate the quality of the given prompt based on the specified criteria.
Provide a score from 0-100, list strengths, weaknesses, and specific suggestions for improvement.
Also provide an improved version of the prompt.

Return your response as a single JSON object matching this JSON schema:
`

// FeedbackSchema returns the JSON schema of Feedback.
func FeedbackSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Feedback{})
	return json.MarshalIndent(schema, "", "  ")
}

// BuildSystemPrompt renders the instructions sent as the system message.
func BuildSystemPrompt() (string, error) {
	schema, err := FeedbackSchema()
	if err != nil {
		return "", fmt.Errorf("failed to build feedback schema: %w", err)
	}
	return systemPromptIntro + string(schema), nil
}

// CriteriaMessage lists the enabled criteria for the user message.
func CriteriaMessage(criteria evaluator.Criteria) string {
	names := criteria.EnabledNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, criterionDescriptions[name])
	}
	return "Evaluate the prompt based on these criteria: " + strings.Join(parts, ", ")
}

// BuildUserMessage combines the criteria and the prompt under evaluation.
func BuildUserMessage(prompt string, criteria evaluator.Criteria) string {
	return fmt.Sprintf("%s\n\nPrompt to evaluate: %s", CriteriaMessage(criteria), prompt)
}

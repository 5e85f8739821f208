package remote

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guiperry/promptfeedback/evaluator"
)

// ParseMode records which recovery tier produced a parsed result.
type ParseMode int

const (
	// ParseStrict means a JSON object was decoded and validated.
	ParseStrict ParseMode = iota
	// ParseSections means fields were scraped from free-form text.
	ParseSections
	// ParseDefault means nothing usable was found.
	ParseDefault
)

func (m ParseMode) String() string {
	switch m {
	case ParseStrict:
		return "strict"
	case ParseSections:
		return "sections"
	default:
		return "default"
	}
}

// DefaultScore is used when the model text carries no recognizable score.
const DefaultScore = 50

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	braceSpan  = regexp.MustCompile(`(?s)\{.*\}`)

	scoreField      = regexp.MustCompile(`(?i)score["']?[:\s]+(\d+)`)
	strengthsBlock  = regexp.MustCompile(`(?is)strengths?:(.*?)(?:weaknesses?:|suggestions?:|improved)`)
	weaknessesBlock = regexp.MustCompile(`(?is)weaknesses?:(.*?)(?:strengths?:|suggestions?:|improved)`)
	suggestionBlock = regexp.MustCompile(`(?is)suggestions?:(.*?)(?:strengths?:|weaknesses?:|improved)`)
	improvedBlock   = regexp.MustCompile(`(?is)improved.*?prompt:?(.*?)(?:$|strengths?:|weaknesses?:|suggestions?:)`)
	bulletLine      = regexp.MustCompile(`(?m)^\s*[-*•]\s*(.*?)\s*$`)

	validate = validator.New()
)

// ParseFeedback turns model text into a Result. It tries a JSON object
// first (fenced block, then the outermost braces), falls back to scraping
// labelled sections, and finally returns a skeleton with DefaultScore.
func ParseFeedback(content string) (evaluator.Result, ParseMode) {
	if result, ok := parseStrict(content); ok {
		return result, ParseStrict
	}
	if result, ok := parseSections(content); ok {
		return result, ParseSections
	}
	return skeleton(DefaultScore), ParseDefault
}

func extractJSON(content string) string {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return braceSpan.FindString(content)
}

func parseStrict(content string) (evaluator.Result, bool) {
	raw := extractJSON(content)
	if raw == "" {
		return evaluator.Result{}, false
	}

	var fb Feedback
	if err := json.Unmarshal([]byte(raw), &fb); err != nil {
		return evaluator.Result{}, false
	}
	if err := validate.Struct(fb); err != nil {
		return evaluator.Result{}, false
	}

	return evaluator.Result{
		Score:          evaluator.ClampScore(int(math.Round(*fb.Score))),
		Strengths:      nonNil(fb.Strengths),
		Weaknesses:     nonNil(fb.Weaknesses),
		Suggestions:    nonNil(fb.Suggestions),
		ImprovedPrompt: strings.TrimSpace(fb.ImprovedPrompt),
	}, true
}

func parseSections(content string) (evaluator.Result, bool) {
	result := skeleton(DefaultScore)
	found := false

	if m := scoreField.FindStringSubmatch(content); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			result.Score = evaluator.ClampScore(score)
			found = true
		}
	}
	for _, section := range []struct {
		re  *regexp.Regexp
		dst *[]string
	}{
		{strengthsBlock, &result.Strengths},
		{weaknessesBlock, &result.Weaknesses},
		{suggestionBlock, &result.Suggestions},
	} {
		if m := section.re.FindStringSubmatch(content); m != nil {
			*section.dst = bullets(m[1])
			found = found || len(*section.dst) > 0
		}
	}
	if m := improvedBlock.FindStringSubmatch(content); m != nil {
		result.ImprovedPrompt = strings.Trim(strings.TrimSpace(m[1]), `"`)
		found = found || result.ImprovedPrompt != ""
	}
	return result, found
}

func bullets(block string) []string {
	items := []string{}
	for _, m := range bulletLine.FindAllStringSubmatch(block, -1) {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func skeleton(score int) evaluator.Result {
	return evaluator.Result{
		Score:       score,
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: []string{},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

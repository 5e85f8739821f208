// Package promptfeedback scores LLM prompts and proposes improved versions.
//
// The heuristic engine lives in the evaluator package and needs no network.
// New wires it together with the optional OpenAI feedback client, the result
// cache and the session history:
//
//	svc, err := promptfeedback.New(promptfeedback.SetLogLevel(promptfeedback.LogLevelInfo))
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := svc.Get(ctx, promptfeedback.Request{Prompt: "Tell me about AI", Criteria: promptfeedback.AllCriteria()})
package promptfeedback

import (
	"fmt"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/feedback"
	"github.com/guiperry/promptfeedback/utils"
)

// Re-export core types for easier access
type (
	Config       = config.Config
	ConfigOption = config.ConfigOption
	LogLevel     = utils.LogLevel

	Criteria = evaluator.Criteria
	Result   = evaluator.Result

	Service  = feedback.Service
	Request  = feedback.Request
	Response = feedback.Response
)

const (
	LogLevelOff   = utils.LogLevelOff
	LogLevelError = utils.LogLevelError
	LogLevelWarn  = utils.LogLevelWarn
	LogLevelInfo  = utils.LogLevelInfo
	LogLevelDebug = utils.LogLevelDebug
)

var (
	LoadConfig  = config.LoadConfig
	AllCriteria = evaluator.AllCriteria

	SetUseLLM   = config.SetUseLLM
	SetModel    = config.SetModel
	SetAPIKey   = config.SetAPIKey
	SetBaseURL  = config.SetBaseURL
	SetCacheTTL = config.SetCacheTTL
	SetLogLevel = config.SetLogLevel
	SetLogger   = config.SetLogger
)

// New loads the environment, applies opts and builds a feedback service.
func New(opts ...ConfigOption) (*Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return feedback.NewService(cfg)
}

// Evaluate runs the heuristic engine once with a random rewriter.
func Evaluate(prompt string, criteria Criteria) Result {
	return evaluator.New().Evaluate(prompt, criteria)
}

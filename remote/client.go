// Package remote asks an OpenAI-compatible chat model for prompt feedback
// and converts its free-form answer into an evaluator.Result.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/utils"
)

const (
	// WeaknessRemoteFailed is reported when the model could not be used.
	WeaknessRemoteFailed = "Failed to get LLM feedback"
	// SuggestionRemoteFailed accompanies WeaknessRemoteFailed.
	SuggestionRemoteFailed = "Try again or use heuristic evaluation"

	maxRetryWait = 30 * time.Second
)

// Request is one remote evaluation.
type Request struct {
	Prompt   string
	Criteria evaluator.Criteria
	APIKey   string
	Model    string
}

// Client calls the chat completions API. It is safe for concurrent use.
type Client struct {
	baseURL         string
	defaultModel    string
	temperature     float32
	maxTokens       int
	maxRetries      int
	retryDelay      time.Duration
	maxPromptTokens int
	httpClient      *http.Client
	limiter         *rate.Limiter
	tokens          TokenCounter
	newRetry        func() RetryStrategy
	logger          utils.Logger
	systemPrompt    string
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client handed to go-openai.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Client) {
		c.tokens = counter
	}
}

func WithMaxPromptTokens(n int) Option {
	return func(c *Client) {
		c.maxPromptTokens = n
	}
}

// WithRetryStrategy sets the factory used for each call's retry state. The
// default is a BackoffRetryStrategy built from the configured retries and
// delay.
func WithRetryStrategy(newRetry func() RetryStrategy) Option {
	return func(c *Client) {
		c.newRetry = newRetry
	}
}

func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient builds a client from the remote settings in cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	systemPrompt, err := BuildSystemPrompt()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	c := &Client{
		baseURL:         cfg.BaseURL,
		defaultModel:    cfg.Model,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		maxRetries:      cfg.MaxRetries,
		retryDelay:      cfg.RetryDelay,
		maxPromptTokens: cfg.PromptLimit,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		limiter:         rate.NewLimiter(limit, 1),
		logger:          cfg.GetLogger(),
		systemPrompt:    systemPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = newTiktokenCounter(c.defaultModel, c.logger)
	}
	if c.newRetry == nil {
		maxRetries, initialWait := c.maxRetries, c.retryDelay
		c.newRetry = func() RetryStrategy {
			return &BackoffRetryStrategy{MaxRetries: maxRetries, InitialWait: initialWait, MaxWait: maxRetryWait}
		}
	}
	return c, nil
}

// Feedback never fails: any error becomes a zero-score Result carrying
// WeaknessRemoteFailed.
func (c *Client) Feedback(ctx context.Context, req Request) evaluator.Result {
	result, err := c.Evaluate(ctx, req)
	if err != nil {
		c.logger.Error("Remote feedback failed", "error", err)
		return FailureResult()
	}
	return result
}

// FailureResult is the degraded result reported for remote failures.
func FailureResult() evaluator.Result {
	return evaluator.Result{
		Score:       0,
		Strengths:   []string{},
		Weaknesses:  []string{WeaknessRemoteFailed},
		Suggestions: []string{SuggestionRemoteFailed},
	}
}

// Evaluate performs the remote call and returns a typed *FeedbackError on
// failure. Malformed model output is not an error; see ParseFeedback.
func (c *Client) Evaluate(ctx context.Context, req Request) (evaluator.Result, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return evaluator.Result{}, NewFeedbackError(ErrorTypeAuthentication, "missing API key", nil)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return evaluator.Result{}, NewFeedbackError(ErrorTypeInvalidInput, "empty prompt", nil)
	}
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	userMessage := BuildUserMessage(req.Prompt, req.Criteria)
	if c.maxPromptTokens > 0 {
		if n := c.tokens.Count(userMessage); n > c.maxPromptTokens {
			return evaluator.Result{}, NewFeedbackError(ErrorTypeInvalidInput,
				fmt.Sprintf("prompt uses %d tokens, limit is %d", n, c.maxPromptTokens), nil)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return evaluator.Result{}, NewFeedbackError(ErrorTypeRateLimit, "rate limiter error", err)
	}

	content, err := c.complete(ctx, req.APIKey, model, userMessage)
	if err != nil {
		return evaluator.Result{}, err
	}

	result, mode := ParseFeedback(content)
	c.logger.Debug("Remote feedback parsed", "model", model, "mode", mode.String(), "score", result.Score)
	return result, nil
}

func (c *Client) complete(ctx context.Context, apiKey, model, userMessage string) (string, error) {
	oaCfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		oaCfg.BaseURL = c.baseURL
	}
	oaCfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(oaCfg)

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	retry := c.newRetry()
	retry.Reset()
	for attempt := 1; ; attempt++ {
		c.logger.Debug("Requesting remote feedback", "model", model, "attempt", attempt)

		resp, err := client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", NewFeedbackError(ErrorTypeResponse, "empty response from API", nil)
			}
			return resp.Choices[0].Message.Content, nil
		}

		fbErr := classify(err)
		c.logger.Warn("Remote feedback attempt failed", "error", fbErr, "attempt", attempt)
		if ctx.Err() != nil || !retry.ShouldRetry(fbErr) {
			return "", fbErr
		}

		select {
		case <-ctx.Done():
			return "", NewFeedbackError(ErrorTypeRequest, "request cancelled", ctx.Err())
		case <-time.After(retry.NextDelay()):
		}
	}
}

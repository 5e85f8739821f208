// Package feedback chooses between heuristic and remote evaluation,
// memoizes results and records them in the session history.
package feedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/history"
	"github.com/guiperry/promptfeedback/remote"
	"github.com/guiperry/promptfeedback/utils"
)

var (
	ErrEmptyPrompt      = errors.New("please enter a prompt")
	ErrMissingAPIKey    = errors.New("please enter an OpenAI API key to use LLM feedback")
	ErrUnsupportedModel = errors.New("unsupported model")
	ErrHistoryNotFound  = errors.New("history item not found")
)

// Source names the strategy that produced a Response.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceLLM       Source = "llm"
	// SourceFallback means the remote call failed and the heuristic result
	// was returned instead.
	SourceFallback Source = "fallback"
)

type Request struct {
	Prompt   string             `json:"prompt"`
	Criteria evaluator.Criteria `json:"criteria"`
	UseLLM   bool               `json:"useLLM"`
	Model    string             `json:"model,omitempty"`
	APIKey   string             `json:"-"`
}

type Response struct {
	Result    evaluator.Result `json:"result"`
	Source    Source           `json:"source"`
	Cached    bool             `json:"cached"`
	HistoryID string           `json:"historyId,omitempty"`
	// Degraded is set when the remote call failed and no fallback applied.
	Degraded  bool             `json:"degraded,omitempty"`
}

// Remote is the part of remote.Client the service depends on.
type Remote interface {
	Evaluate(ctx context.Context, req remote.Request) (evaluator.Result, error)
}

type cached struct {
	result evaluator.Result
	source Source
}

// Service is safe for concurrent use.
type Service struct {
	evaluator *evaluator.Evaluator
	remote    Remote
	history   *history.Store
	cache     *expirable.LRU[string, cached]
	logger    utils.Logger
	model     string
	apiKey    string
	fallback  bool
	batch     *batchLimiter
}

type Option func(*Service)

func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(s *Service) {
		s.evaluator = e
	}
}

func WithRemote(r Remote) Option {
	return func(s *Service) {
		s.remote = r
	}
}

func WithHistory(h *history.Store) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithFallback controls whether a failed remote call returns the heuristic
// result (true, the default) or the zero-score failure result.
func WithFallback(enabled bool) Option {
	return func(s *Service) {
		s.fallback = enabled
	}
}

// NewService wires the evaluator, the remote client, the history store and
// the result cache from cfg. Options override the wired components.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	logger := cfg.GetLogger()
	s := &Service{
		logger:   logger,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		fallback: true,
		history:  history.NewStore(cfg.HistorySize),
		batch:    newBatchLimiter(0, 1),
	}
	if cfg.CacheTTL > 0 {
		s.cache = expirable.NewLRU[string, cached](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.evaluator == nil {
		s.evaluator = evaluator.New(evaluator.WithLogger(logger))
	}
	if s.remote == nil {
		client, err := remote.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote client: %w", err)
		}
		s.remote = client
	}
	return s, nil
}

func (s *Service) History() *history.Store {
	return s.history
}

// Get evaluates req. The heuristic result is always computed; the remote
// strategy replaces it when req.UseLLM is set.
func (s *Service) Get(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, ErrEmptyPrompt
	}
	if req.Model == "" {
		req.Model = s.model
	}
	if req.APIKey == "" {
		req.APIKey = s.apiKey
	}
	if req.UseLLM {
		if strings.TrimSpace(req.APIKey) == "" {
			return Response{}, ErrMissingAPIKey
		}
		if !slices.Contains(config.SupportedModels, req.Model) {
			return Response{}, fmt.Errorf("%w: %s", ErrUnsupportedModel, req.Model)
		}
	}

	key := cacheKey(req)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			s.logger.Debug("Feedback cache hit", "source", hit.source)
			resp := Response{Result: hit.result.Clone(), Source: hit.source, Cached: true}
			resp.HistoryID = s.record(req, resp)
			return resp, nil
		}
	}

	resp := s.evaluate(ctx, req)
	if s.cache != nil && !resp.Degraded && resp.Source != SourceFallback {
		s.cache.Add(key, cached{result: resp.Result.Clone(), source: resp.Source})
	}
	resp.HistoryID = s.record(req, resp)
	return resp, nil
}

func (s *Service) evaluate(ctx context.Context, req Request) Response {
	heuristic := s.evaluator.Evaluate(req.Prompt, req.Criteria)
	if !req.UseLLM {
		return Response{Result: heuristic, Source: SourceHeuristic}
	}

	result, err := s.remote.Evaluate(ctx, remote.Request{
		Prompt:   req.Prompt,
		Criteria: req.Criteria,
		APIKey:   req.APIKey,
		Model:    req.Model,
	})
	if err == nil {
		return Response{Result: result, Source: SourceLLM}
	}

	s.logger.Error("Remote feedback failed", "error", err, "fallback", s.fallback)
	if s.fallback {
		return Response{Result: heuristic, Source: SourceFallback}
	}
	return Response{Result: remote.FailureResult(), Source: SourceLLM, Degraded: true}
}

func (s *Service) record(req Request, resp Response) string {
	if s.history == nil {
		return ""
	}
	return s.history.Append(req.Prompt, resp.Result, resp.Source == SourceLLM).ID
}

// Reevaluate evaluates the improved prompt of a history item, falling back
// to the original prompt when the item has none.
func (s *Service) Reevaluate(ctx context.Context, id string, req Request) (Response, error) {
	item, ok := s.history.Get(id)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrHistoryNotFound, id)
	}
	req.Prompt = item.ImprovedPrompt
	if req.Prompt == "" {
		req.Prompt = item.Original
	}
	return s.Get(ctx, req)
}

// ClearCache drops every memoized result.
func (s *Service) ClearCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func cacheKey(req Request) string {
	criteria, _ := json.Marshal(req.Criteria)
	var b strings.Builder
	b.WriteString(req.Prompt)
	b.WriteByte(0)
	b.Write(criteria)
	fmt.Fprintf(&b, "\x00%t\x00%s\x00", req.UseLLM, req.Model)
	if req.UseLLM {
		b.WriteString(fingerprint(req.APIKey))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}

package feedback

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/remote"
	"github.com/guiperry/promptfeedback/utils"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Evaluate(ctx context.Context, req remote.Request) (evaluator.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(evaluator.Result), args.Error(1)
}

const vaguePrompt = "Tell me about AI"

func remoteResult() evaluator.Result {
	return evaluator.Result{
		Score:          77,
		Strengths:      []string{"Direct"},
		Weaknesses:     []string{"No audience"},
		Suggestions:    []string{"Say who it is for"},
		ImprovedPrompt: "Explain AI to a new engineer in five bullet points.",
	}
}

func newTestService(t *testing.T, r Remote, cfgOpts []config.ConfigOption, opts ...Option) *Service {
	t.Helper()
	cfg := config.NewConfig()
	config.ApplyOptions(cfg, config.SetLogger(utils.NewMockLogger()))
	config.ApplyOptions(cfg, cfgOpts...)

	opts = append([]Option{
		WithRemote(r),
		WithEvaluator(evaluator.New(evaluator.WithChooser(evaluator.FixedChooser(0)))),
	}, opts...)
	s, err := NewService(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestGetHeuristic(t *testing.T) {
	r := new(MockRemote)
	s := newTestService(t, r, nil)

	resp, err := s.Get(context.Background(), Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria()})
	require.NoError(t, err)

	assert.Equal(t, SourceHeuristic, resp.Source)
	assert.False(t, resp.Cached)
	assert.Equal(t, 30, resp.Result.Score)
	assert.NotEmpty(t, resp.Result.ImprovedPrompt)
	r.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)

	item, ok := s.History().Get(resp.HistoryID)
	require.True(t, ok)
	assert.Equal(t, vaguePrompt, item.Original)
	assert.Equal(t, 30, item.Score)
	assert.False(t, item.Remote)
}

func TestGetRejectsBadInput(t *testing.T) {
	s := newTestService(t, new(MockRemote), nil)

	_, err := s.Get(context.Background(), Request{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = s.Get(context.Background(), Request{Prompt: vaguePrompt, UseLLM: true})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = s.Get(context.Background(), Request{Prompt: vaguePrompt, UseLLM: true, APIKey: "sk", Model: "davinci"})
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	assert.Equal(t, 0, s.History().Len())
}

func TestGetRemote(t *testing.T) {
	r := new(MockRemote)
	r.On("Evaluate", mock.Anything, remote.Request{
		Prompt:   vaguePrompt,
		Criteria: evaluator.AllCriteria(),
		APIKey:   "sk-test",
		Model:    "gpt-3.5-turbo",
	}).Return(remoteResult(), nil).Once()

	s := newTestService(t, r, nil)
	req := Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria(), UseLLM: true, APIKey: "sk-test"}

	resp, err := s.Get(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, resp.Source)
	assert.Equal(t, remoteResult(), resp.Result)

	again, err := s.Get(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, remoteResult(), again.Result)
	assert.NotEqual(t, resp.HistoryID, again.HistoryID)
	assert.Equal(t, 2, s.History().Len())

	r.AssertExpectations(t)
}

func TestGetUsesConfiguredAPIKey(t *testing.T) {
	r := new(MockRemote)
	r.On("Evaluate", mock.Anything, mock.MatchedBy(func(req remote.Request) bool {
		return req.APIKey == "sk-env" && req.Model == "gpt-4"
	})).Return(remoteResult(), nil).Once()

	s := newTestService(t, r, []config.ConfigOption{config.SetAPIKey("sk-env"), config.SetModel("gpt-4")})
	_, err := s.Get(context.Background(), Request{Prompt: vaguePrompt, UseLLM: true})
	require.NoError(t, err)
	r.AssertExpectations(t)
}

func TestGetRemoteFailure(t *testing.T) {
	failure := remote.NewFeedbackError(remote.ErrorTypeAuthentication, "credential rejected", nil)

	t.Run("falls back to heuristic", func(t *testing.T) {
		r := new(MockRemote)
		r.On("Evaluate", mock.Anything, mock.Anything).Return(evaluator.Result{}, failure).Twice()
		s := newTestService(t, r, nil)

		req := Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria(), UseLLM: true, APIKey: "sk-bad"}
		resp, err := s.Get(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, SourceFallback, resp.Source)
		assert.Equal(t, 30, resp.Result.Score)

		// failures are not memoized
		resp, err = s.Get(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
		r.AssertExpectations(t)
	})

	t.Run("degraded result without fallback", func(t *testing.T) {
		r := new(MockRemote)
		r.On("Evaluate", mock.Anything, mock.Anything).Return(evaluator.Result{}, failure)
		s := newTestService(t, r, nil, WithFallback(false))

		resp, err := s.Get(context.Background(), Request{Prompt: vaguePrompt, UseLLM: true, APIKey: "sk-bad"})
		require.NoError(t, err)
		assert.True(t, resp.Degraded)
		assert.Equal(t, remote.FailureResult(), resp.Result)
		assert.Equal(t, []string{remote.WeaknessRemoteFailed}, resp.Result.Weaknesses)
	})
}

func TestCacheKeySeparatesInputs(t *testing.T) {
	base := Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria(), UseLLM: true, Model: "gpt-4", APIKey: "a"}

	variants := []Request{base, base, base, base, base}
	variants[1].Prompt = "Tell me about ML"
	variants[2].Criteria.Examples = false
	variants[3].Model = "gpt-4-turbo"
	variants[4].APIKey = "b"

	seen := map[string]bool{}
	for _, v := range variants {
		key := cacheKey(v)
		assert.False(t, seen[key], "duplicate key for %+v", v)
		seen[key] = true
		assert.NotContains(t, key, v.APIKey+v.Prompt)
	}
	assert.Equal(t, cacheKey(base), cacheKey(base))

	heuristic := base
	heuristic.UseLLM = false
	other := heuristic
	other.APIKey = "b"
	assert.Equal(t, cacheKey(heuristic), cacheKey(other))
}

func TestCacheDisabledAndExpiry(t *testing.T) {
	r := new(MockRemote)
	r.On("Evaluate", mock.Anything, mock.Anything).Return(remoteResult(), nil)

	s := newTestService(t, r, []config.ConfigOption{config.SetCacheTTL(0)})
	req := Request{Prompt: vaguePrompt, UseLLM: true, APIKey: "sk"}
	for range 2 {
		resp, err := s.Get(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
	}
	r.AssertNumberOfCalls(t, "Evaluate", 2)

	short := newTestService(t, r, []config.ConfigOption{config.SetCacheTTL(20 * time.Millisecond)})
	_, err := short.Get(context.Background(), req)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	resp, err := short.Get(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.Cached)
}

func TestReevaluate(t *testing.T) {
	s := newTestService(t, new(MockRemote), nil)

	first, err := s.Get(context.Background(), Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria()})
	require.NoError(t, err)

	second, err := s.Reevaluate(context.Background(), first.HistoryID, Request{Criteria: evaluator.AllCriteria()})
	require.NoError(t, err)

	item, ok := s.History().Get(second.HistoryID)
	require.True(t, ok)
	assert.Equal(t, first.Result.ImprovedPrompt, item.Original)

	_, err = s.Reevaluate(context.Background(), "missing", Request{})
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestEvaluateBatch(t *testing.T) {
	var calls atomic.Int32
	r := new(MockRemote)
	r.On("Evaluate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(remoteResult(), nil)

	s := newTestService(t, r, []config.ConfigOption{config.SetCacheTTL(0)})
	items := []BatchItem{
		{Name: "vague", Request: Request{Prompt: vaguePrompt, Criteria: evaluator.AllCriteria()}},
		{Name: "empty", Request: Request{Prompt: ""}},
		{Name: "remote", Request: Request{Prompt: vaguePrompt, UseLLM: true, APIKey: "sk"}},
	}

	results := s.EvaluateBatch(context.Background(), items)
	require.Len(t, results, 3)

	assert.Equal(t, "vague", results[0].Name)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, 30, results[0].Response.Result.Score)

	assert.ErrorIs(t, results[1].Error, ErrEmptyPrompt)

	assert.NoError(t, results[2].Error)
	assert.Equal(t, SourceLLM, results[2].Response.Source)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEvaluateBatchCancelled(t *testing.T) {
	s := newTestService(t, new(MockRemote), nil)
	s.SetBatchRateLimit(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := s.EvaluateBatch(ctx, []BatchItem{{Name: "a", Request: Request{Prompt: vaguePrompt}}})
	require.Len(t, results, 1)
	assert.True(t, errors.Is(results[0].Error, context.Canceled))
}

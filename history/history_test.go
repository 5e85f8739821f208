package history

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guiperry/promptfeedback/evaluator"
)

func sampleResult(score int) evaluator.Result {
	return evaluator.Result{
		Score:          score,
		Strengths:      []string{"Clear"},
		Weaknesses:     []string{"No audience"},
		Suggestions:    []string{"Add audience"},
		ImprovedPrompt: "Better",
	}
}

func TestStoreAppendAndOrder(t *testing.T) {
	s := NewStore(0)
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := s.Append("first", sampleResult(10), false)
	second := s.Append("second", sampleResult(20), true)
	third := s.Append("third", sampleResult(30), false)

	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.Timestamp.After(first.Timestamp))
	assert.True(t, second.Remote)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"first", "second", "third"}, originals(s.List()))
	assert.Equal(t, []string{"third", "second", "first"}, originals(s.Recent(0)))
	assert.Equal(t, []string{"third", "second"}, originals(s.Recent(2)))

	got, ok := s.Get(third.ID)
	require.True(t, ok)
	assert.Equal(t, 30, got.Score)
	assert.Equal(t, sampleResult(30), got.Result())

	_, ok = s.Get("missing")
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
}

func TestStoreCopiesResults(t *testing.T) {
	s := NewStore(0)
	r := sampleResult(50)
	item := s.Append("prompt", r, false)

	r.Strengths[0] = "mutated"
	item.Weaknesses[0] = "mutated"

	stored := s.List()[0]
	assert.Equal(t, "Clear", stored.Strengths[0])
	assert.Equal(t, "No audience", stored.Weaknesses[0])
}

func TestStoreLimit(t *testing.T) {
	s := NewStore(2)
	s.Append("a", sampleResult(1), false)
	s.Append("b", sampleResult(2), false)
	s.Append("c", sampleResult(3), false)

	assert.Equal(t, []string{"b", "c"}, originals(s.List()))
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append("prompt", sampleResult(i), false)
			_ = s.Recent(5)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestItemTruncated(t *testing.T) {
	testCases := []struct {
		name     string
		original string
		n        int
		expected string
	}{
		{"short prompt", "Explain AI", 100, "Explain AI"},
		{"exact length", strings.Repeat("a", 100), 100, strings.Repeat("a", 100)},
		{"long prompt", strings.Repeat("a", 120), 100, strings.Repeat("a", 100) + "..."},
		{"runes not bytes", "héllo wörld", 5, "héllo..."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Item{Original: tc.original}.Truncated(tc.n))
		})
	}

	assert.Equal(t, strings.Repeat("b", 100)+"...", Item{Original: strings.Repeat("b", 101)}.Preview())
}

func originals(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Original)
	}
	return out
}

// Package history keeps the evaluations of a session in memory.
package history

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/guiperry/promptfeedback/evaluator"
)

// PreviewLength is the number of characters kept by Item.Preview.
const PreviewLength = 100

// Item is one recorded evaluation.
type Item struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Original       string    `json:"original"`
	Score          int       `json:"score"`
	Strengths      []string  `json:"strengths"`
	Weaknesses     []string  `json:"weaknesses"`
	Suggestions    []string  `json:"suggestions"`
	ImprovedPrompt string    `json:"improvedPrompt"`
	Remote         bool      `json:"remote"`
}

// Truncated returns the first n characters of the original prompt, followed
// by "..." when anything was cut.
func (i Item) Truncated(n int) string {
	if n < 0 || utf8.RuneCountInString(i.Original) <= n {
		return i.Original
	}
	return string([]rune(i.Original)[:n]) + "..."
}

// Preview is Truncated(PreviewLength).
func (i Item) Preview() string {
	return i.Truncated(PreviewLength)
}

// Result rebuilds the evaluation that produced the item.
func (i Item) Result() evaluator.Result {
	return evaluator.Result{
		Score:          i.Score,
		Strengths:      i.Strengths,
		Weaknesses:     i.Weaknesses,
		Suggestions:    i.Suggestions,
		ImprovedPrompt: i.ImprovedPrompt,
	}.Clone()
}

// Store is an append-only, concurrency-safe evaluation log. A zero Limit
// keeps every item; otherwise the oldest items are dropped beyond Limit.
type Store struct {
	mu    sync.RWMutex
	items []Item
	limit int
	now   func() time.Time
}

func NewStore(limit int) *Store {
	return &Store{limit: limit, now: time.Now}
}

// Append records result for prompt and returns the stored item.
func (s *Store) Append(prompt string, result evaluator.Result, remote bool) Item {
	r := result.Clone()
	item := Item{
		ID:             uuid.NewString(),
		Timestamp:      s.now(),
		Original:       prompt,
		Score:          r.Score,
		Strengths:      r.Strengths,
		Weaknesses:     r.Weaknesses,
		Suggestions:    r.Suggestions,
		ImprovedPrompt: r.ImprovedPrompt,
		Remote:         remote,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	if s.limit > 0 && len(s.items) > s.limit {
		s.items = append([]Item(nil), s.items[len(s.items)-s.limit:]...)
	}
	return item
}

// List returns the items oldest first.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Recent returns up to n items newest first. n <= 0 returns all of them.
func (s *Store) Recent(n int) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.items) {
		n = len(s.items)
	}
	out := make([]Item, 0, n)
	for i := len(s.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.items[i])
	}
	return out
}

func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

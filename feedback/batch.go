package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type batchLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

func newBatchLimiter(every time.Duration, burst int) *batchLimiter {
	limit := rate.Inf
	if every > 0 {
		limit = rate.Every(every)
	}
	return &batchLimiter{limiter: rate.NewLimiter(limit, burst)}
}

func (b *batchLimiter) get() *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limiter
}

// BatchItem names one prompt of a batch.
type BatchItem struct {
	Name    string
	Request Request
}

type BatchResult struct {
	Name     string
	Response Response
	Error    error
}

// SetBatchRateLimit throttles EvaluateBatch to r evaluations per second with
// the given burst.
func (s *Service) SetBatchRateLimit(r rate.Limit, burst int) {
	s.batch.mu.Lock()
	s.batch.limiter = rate.NewLimiter(r, burst)
	s.batch.mu.Unlock()
}

// EvaluateBatch runs Get for every item concurrently. Results keep the order
// of items; per-item failures are reported in BatchResult.Error.
func (s *Service) EvaluateBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	limiter := s.batch.get()
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()

			if err := limiter.Wait(ctx); err != nil {
				results[i] = BatchResult{Name: item.Name, Error: fmt.Errorf("rate limiter error: %w", err)}
				return
			}

			resp, err := s.Get(ctx, item.Request)
			results[i] = BatchResult{Name: item.Name, Response: resp, Error: err}
			if err == nil {
				s.logger.Debug("Batch item evaluated", "name", item.Name, "score", resp.Result.Score)
			}
		}(i, item)
	}
	wg.Wait()
	return results
}

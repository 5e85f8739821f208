package remote

import "time"

// RetryStrategy decides whether and when a failed remote call is repeated.
type RetryStrategy interface {
	// ShouldRetry determines if a retry should be attempted.
	ShouldRetry(err error) bool

	// NextDelay returns the delay before the next retry.
	NextDelay() time.Duration

	// Reset resets the retry state.
	Reset()
}

// BackoffRetryStrategy doubles the wait after every attempt up to MaxWait.
// It is not safe for concurrent use; create one per call.
type BackoffRetryStrategy struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	attempts    int
}

func (s *BackoffRetryStrategy) ShouldRetry(err error) bool {
	if err == nil || s.attempts >= s.MaxRetries {
		return false
	}
	return classify(err).Retryable()
}

const maxShiftAmount = 30 // Cap at 2^30 to prevent overflow

func (s *BackoffRetryStrategy) NextDelay() time.Duration {
	s.attempts++
	shiftAmount := min(s.attempts-1, maxShiftAmount)
	delay := s.InitialWait * time.Duration(1<<shiftAmount)
	if s.MaxWait > 0 && delay > s.MaxWait {
		delay = s.MaxWait
	}
	return delay
}

func (s *BackoffRetryStrategy) Reset() {
	s.attempts = 0
}

package evaluator

import (
	"math/rand/v2"
	"sync"
)

// Chooser picks an index in [0, n). The rewriter uses it for every random
// phrase so tests can pin the output.
type Chooser interface {
	Choose(n int) int
}

// RandomChooser draws uniformly. It is safe for concurrent use.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser seeds from the runtime's random source.
func NewRandomChooser() *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededChooser returns a reproducible uniform chooser.
func NewSeededChooser(seed uint64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (c *RandomChooser) Choose(n int) int {
	if n <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

// FixedChooser always picks the same index, wrapped into range.
type FixedChooser int

func (f FixedChooser) Choose(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f) % n
	if i < 0 {
		i += n
	}
	return i
}

// SequenceChooser replays indexes in order and then repeats the last one.
type SequenceChooser struct {
	mu      sync.Mutex
	indexes []int
	pos     int
}

func NewSequenceChooser(indexes ...int) *SequenceChooser {
	return &SequenceChooser{indexes: indexes}
}

func (s *SequenceChooser) Choose(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.indexes) == 0 {
		return FixedChooser(0).Choose(n)
	}
	i := s.indexes[min(s.pos, len(s.indexes)-1)]
	s.pos++
	return FixedChooser(i).Choose(n)
}

package brackets

import (
	"math/rand/v2"
	"sync"
)

// Shuffler permutes bracket units once at tournament start. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// lockedShuffler serializes a shared source across tenants.
type lockedShuffler struct {
	mu  sync.Mutex
	src Shuffler
}

func NewLockedShuffler(src Shuffler) Shuffler {
	return &lockedShuffler{src: src}
}

func (s *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Shuffle(n, swap)
}

// NewSeededShuffler returns a reproducible shuffler for a fixed seed.
func NewSeededShuffler(seed uint64) Shuffler {
	return NewLockedShuffler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandomShuffler is seeded from the runtime's random source.
func NewRandomShuffler() Shuffler {
	return NewSeededShuffler(rand.Uint64())
}

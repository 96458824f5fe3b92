package refresh

import (
	"fmt"
	"math/rand"
	"sync"

	"daily-refresher/internal/domain/entity"
)

// Sampler picks a duplicate-free subset of candidates.
// Implementations return min(n, len(candidates)) documents and never modify candidates.
type Sampler interface {
	Sample(candidates []entity.Document, n int) []entity.Document
}

// PrefixSampler returns the first n candidates in scan order.
type PrefixSampler struct{}

// Sample implements Sampler.
func (PrefixSampler) Sample(candidates []entity.Document, n int) []entity.Document {
	n = bound(n, len(candidates))
	out := make([]entity.Document, n)
	copy(out, candidates[:n])
	return out
}

// UniformSampler draws n distinct candidates uniformly at random without
// replacement and returns them in draw order. It is safe for concurrent use.
type UniformSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformSampler returns a UniformSampler drawing from src.
func NewUniformSampler(src rand.Source) *UniformSampler {
	return &UniformSampler{rng: rand.New(src)}
}

// Sample implements Sampler with a partial Fisher–Yates shuffle over an
// index permutation: after step i, idx[:i+1] holds the first i+1 draws.
func (u *UniformSampler) Sample(candidates []entity.Document, n int) []entity.Document {
	n = bound(n, len(candidates))
	if n == 0 {
		return []entity.Document{}
	}

	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}

	u.mu.Lock()
	for i := 0; i < n; i++ {
		j := i + u.rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	u.mu.Unlock()

	out := make([]entity.Document, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[idx[i]]
	}
	return out
}

// NewSampler returns the sampler for policy. src is used by the random policy only.
func NewSampler(policy entity.SelectionPolicy, src rand.Source) (Sampler, error) {
	switch policy {
	case entity.PolicyFirst:
		return PrefixSampler{}, nil
	case entity.PolicyRandom:
		return NewUniformSampler(src), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

func bound(n, size int) int {
	if n < 0 {
		return 0
	}
	return min(n, size)
}

package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/seglab/segfeed/internal/domain"
)

// Iterator hands out sample references for one epoch. Implementations are
// safe for concurrent Next calls; each reference is claimed by exactly one
// caller.
type Iterator interface {
	// Next returns the next reference and its enumeration sequence number.
	// ok is false once the epoch is exhausted.
	Next() (ref domain.SampleRef, seq uint64, ok bool)

	// Reset rewinds the iterator for a new epoch. Strategies that use
	// randomness re-seed from seed; deterministic strategies ignore it.
	Reset(seed int64)

	// Len returns the number of references handed out per epoch.
	Len() int
}

// Sequential iterates the references in enumeration order.
type Sequential struct {
	mu     sync.Mutex
	refs   []domain.SampleRef
	cursor int
}

// NewSequential creates an iterator over refs in order.
func NewSequential(refs []domain.SampleRef) *Sequential {
	return &Sequential{refs: refs}
}

func (it *Sequential) Next() (domain.SampleRef, uint64, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.cursor >= len(it.refs) {
		return domain.SampleRef{}, 0, false
	}
	ref := it.refs[it.cursor]
	seq := uint64(it.cursor)
	it.cursor++
	return ref, seq, true
}

func (it *Sequential) Reset(seed int64) {
	it.mu.Lock()
	it.cursor = 0
	it.mu.Unlock()
}

func (it *Sequential) Len() int { return len(it.refs) }

// Shuffled iterates a seeded permutation of the references, reshuffling on
// every Reset. The same seed reproduces the same order.
type Shuffled struct {
	mu     sync.Mutex
	refs   []domain.SampleRef
	perm   []int
	cursor int
}

// NewShuffled creates a shuffling iterator seeded with seed.
func NewShuffled(refs []domain.SampleRef, seed int64) *Shuffled {
	it := &Shuffled{refs: refs}
	it.Reset(seed)
	return it
}

func (it *Shuffled) Next() (domain.SampleRef, uint64, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.cursor >= len(it.perm) {
		return domain.SampleRef{}, 0, false
	}
	ref := it.refs[it.perm[it.cursor]]
	seq := uint64(it.cursor)
	it.cursor++
	return ref, seq, true
}

func (it *Shuffled) Reset(seed int64) {
	it.mu.Lock()
	it.perm = rand.New(rand.NewSource(seed)).Perm(len(it.refs))
	it.cursor = 0
	it.mu.Unlock()
}

func (it *Shuffled) Len() int { return len(it.refs) }

// Weighted samples references with replacement, each draw proportional to
// its weight. An epoch consists of Len() draws, so a reference may repeat
// within one epoch.
type Weighted struct {
	mu    sync.Mutex
	refs  []domain.SampleRef
	cum   []float64
	rng   *rand.Rand
	draws int
}

// NewWeighted creates a weighted iterator. weights must have one entry per
// reference; negative weights are folded to their absolute value before
// normalization.
func NewWeighted(refs []domain.SampleRef, weights []float64, seed int64) (*Weighted, error) {
	if len(weights) != len(refs) {
		return nil, fmt.Errorf("%d weights for %d samples", len(weights), len(refs))
	}

	cum := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		sum += math.Abs(w)
		cum[i] = sum
	}
	if sum == 0 {
		return nil, fmt.Errorf("all sample weights are zero")
	}
	for i := range cum {
		cum[i] /= sum
	}

	return &Weighted{
		refs: refs,
		cum:  cum,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

func (it *Weighted) Next() (domain.SampleRef, uint64, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.draws >= len(it.refs) {
		return domain.SampleRef{}, 0, false
	}
	u := it.rng.Float64()
	idx := sort.SearchFloat64s(it.cum, u)
	if idx >= len(it.refs) {
		idx = len(it.refs) - 1
	}
	seq := uint64(it.draws)
	it.draws++
	return it.refs[idx], seq, true
}

func (it *Weighted) Reset(seed int64) {
	it.mu.Lock()
	it.rng = rand.New(rand.NewSource(seed))
	it.draws = 0
	it.mu.Unlock()
}

func (it *Weighted) Len() int { return len(it.refs) }

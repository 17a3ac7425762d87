package pipeline

import "github.com/seglab/segfeed/internal/domain"

// reorderBuffer restores enumeration order over the racing workers'
// output. Items are held until every lower sequence number has been seen;
// tombstones (skipped samples) release their slot without emitting.
//
// The buffer can hold at most one item per in-flight worker beyond the
// queue, so its size is bounded by the worker count.
type reorderBuffer struct {
	pending map[uint64]item
	next    uint64
}

func newReorderBuffer() *reorderBuffer {
	return &reorderBuffer{pending: make(map[uint64]item)}
}

// Push inserts an item and returns the samples that became emittable, in
// sequence order.
func (r *reorderBuffer) Push(it item) []*domain.Sample {
	r.pending[it.seq] = it

	var out []*domain.Sample
	for {
		head, ok := r.pending[r.next]
		if !ok {
			return out
		}
		delete(r.pending, r.next)
		r.next++
		if head.sample != nil {
			out = append(out, head.sample)
		}
	}
}

// Flush returns the remaining samples in sequence order. Only meaningful
// once no more pushes will happen.
func (r *reorderBuffer) Flush() []*domain.Sample {
	var out []*domain.Sample
	for len(r.pending) > 0 {
		head, ok := r.pending[r.next]
		if ok {
			delete(r.pending, r.next)
			if head.sample != nil {
				out = append(out, head.sample)
			}
		}
		r.next++
	}
	return out
}

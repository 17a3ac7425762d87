package pipeline

import (
	"testing"

	"github.com/seglab/segfeed/internal/domain"
)

func seqSample(seq uint64) *domain.Sample {
	return &domain.Sample{
		Image:  domain.NewImage(1, 1),
		Target: domain.NewLabelMap(1, 1, 0),
		Seq:    seq,
	}
}

func TestReorderBuffer_InOrder(t *testing.T) {
	r := newReorderBuffer()

	for seq := uint64(0); seq < 3; seq++ {
		out := r.Push(item{seq: seq, sample: seqSample(seq)})
		if len(out) != 1 || out[0].Seq != seq {
			t.Fatalf("Push(%d) = %v, want immediate release", seq, out)
		}
	}
}

func TestReorderBuffer_HoldsUntilGapFills(t *testing.T) {
	r := newReorderBuffer()

	if out := r.Push(item{seq: 2, sample: seqSample(2)}); len(out) != 0 {
		t.Fatalf("Push(2) released %d samples, want 0", len(out))
	}
	if out := r.Push(item{seq: 1, sample: seqSample(1)}); len(out) != 0 {
		t.Fatalf("Push(1) released %d samples, want 0", len(out))
	}

	out := r.Push(item{seq: 0, sample: seqSample(0)})
	if len(out) != 3 {
		t.Fatalf("Push(0) released %d samples, want 3", len(out))
	}
	for i, s := range out {
		if s.Seq != uint64(i) {
			t.Errorf("out[%d].Seq = %d, want %d", i, s.Seq, i)
		}
	}
}

func TestReorderBuffer_TombstoneFillsGap(t *testing.T) {
	r := newReorderBuffer()

	if out := r.Push(item{seq: 1, sample: seqSample(1)}); len(out) != 0 {
		t.Fatal("seq 1 released before seq 0 resolved")
	}

	// Skipped sample: releases the slot without emitting.
	out := r.Push(item{seq: 0, sample: nil})
	if len(out) != 1 || out[0].Seq != 1 {
		t.Fatalf("tombstone push released %v, want just seq 1", out)
	}
}

func TestReorderBuffer_Flush(t *testing.T) {
	r := newReorderBuffer()

	r.Push(item{seq: 3, sample: seqSample(3)})
	r.Push(item{seq: 1, sample: seqSample(1)})
	r.Push(item{seq: 5, sample: nil})

	out := r.Flush()
	if len(out) != 2 {
		t.Fatalf("Flush() = %d samples, want 2", len(out))
	}
	if out[0].Seq != 1 || out[1].Seq != 3 {
		t.Errorf("Flush() order = [%d, %d], want [1, 3]", out[0].Seq, out[1].Seq)
	}
	if len(r.pending) != 0 {
		t.Errorf("pending = %d after Flush(), want 0", len(r.pending))
	}
}

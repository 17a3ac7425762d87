package domain

import (
	"fmt"
	"math"

	"github.com/pdevine/tensor"
)

// Batch is a fixed group of processed samples stacked for one training step.
// Images and Targets own copies of the sample data; a Batch is immutable
// after assembly.
type Batch struct {
	// Images holds float32 pixel data with shape [N, 3, H, W].
	Images *tensor.Dense

	// Targets holds the one-hot encoded labels with shape [N, C, H, W].
	// Pixels labeled IgnoreLabel are all-zero across the class dimension.
	Targets *tensor.Dense

	// Refs records which dataset entries the batch was assembled from, in
	// stacking order.
	Refs []SampleRef
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Refs)
}

// BatchBuilder accumulates processed samples and stacks them into a Batch.
// All samples added to one builder must share the dimensions of the first.
type BatchBuilder struct {
	capacity   int
	numClasses int
	samples    []*Sample
}

// NewBatchBuilder creates a builder for batches of the given capacity.
func NewBatchBuilder(capacity, numClasses int) *BatchBuilder {
	return &BatchBuilder{
		capacity:   capacity,
		numClasses: numClasses,
		samples:    make([]*Sample, 0, capacity),
	}
}

// Add appends a sample. It fails if the builder is full or if the sample
// dimensions disagree with the first sample.
func (b *BatchBuilder) Add(s *Sample) error {
	if len(b.samples) >= b.capacity {
		return fmt.Errorf("batch is full (%d samples)", b.capacity)
	}
	if len(b.samples) > 0 {
		first := b.samples[0]
		if s.Image.Width != first.Image.Width || s.Image.Height != first.Image.Height {
			return fmt.Errorf("image size %dx%d does not match batch size %dx%d",
				s.Image.Height, s.Image.Width, first.Image.Height, first.Image.Width)
		}
		if s.Target.Width != first.Target.Width || s.Target.Height != first.Target.Height {
			return fmt.Errorf("target size %dx%d does not match batch size %dx%d",
				s.Target.Height, s.Target.Width, first.Target.Height, first.Target.Width)
		}
	}
	b.samples = append(b.samples, s)
	return nil
}

// Size returns the number of accumulated samples.
func (b *BatchBuilder) Size() int { return len(b.samples) }

// Full reports whether the builder holds capacity samples.
func (b *BatchBuilder) Full() bool { return len(b.samples) >= b.capacity }

// Empty reports whether the builder holds no samples.
func (b *BatchBuilder) Empty() bool { return len(b.samples) == 0 }

// Reset discards all accumulated samples.
func (b *BatchBuilder) Reset() { b.samples = b.samples[:0] }

// Build stacks the accumulated samples into a Batch and resets the builder.
// Image data is copied channel-planar; NaN pixel values are replaced by 0.
// Targets are one-hot encoded with IgnoreLabel pixels left all-zero.
func (b *BatchBuilder) Build() *Batch {
	n := len(b.samples)
	if n == 0 {
		return nil
	}

	first := b.samples[0]
	ih, iw := first.Image.Height, first.Image.Width
	th, tw := first.Target.Height, first.Target.Width

	imageStride := 3 * ih * iw
	targetStride := b.numClasses * th * tw

	images := make([]float32, n*imageStride)
	targets := make([]float32, n*targetStride)
	refs := make([]SampleRef, n)

	for i, s := range b.samples {
		dst := images[i*imageStride : (i+1)*imageStride]
		copy(dst, s.Image.Pix)
		for k, v := range dst {
			if math.IsNaN(float64(v)) {
				dst[k] = 0
			}
		}
		encodeOneHot(s.Target, targets[i*targetStride:(i+1)*targetStride], b.numClasses)
		refs[i] = s.Ref
	}

	b.Reset()

	return &Batch{
		Images:  tensor.New(tensor.WithShape(n, 3, ih, iw), tensor.WithBacking(images)),
		Targets: tensor.New(tensor.WithShape(n, b.numClasses, th, tw), tensor.WithBacking(targets)),
		Refs:    refs,
	}
}

// encodeOneHot writes the one-hot encoding of m into dst, laid out as
// numClasses planes of Height*Width. Class ids outside [0, numClasses) and
// IgnoreLabel pixels stay zero.
func encodeOneHot(m *LabelMap, dst []float32, numClasses int) {
	plane := m.Height * m.Width
	for i, c := range m.Classes {
		if c == IgnoreLabel || int(c) >= numClasses {
			continue
		}
		dst[int(c)*plane+i] = 1
	}
}

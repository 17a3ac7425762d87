package transform

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/seglab/segfeed/internal/domain"
)

// Crop extracts a random square crop, preferring regions whose class
// distribution has high entropy. Positions are scored by the entropy of
// the class histogram of the window anchored there, and a crop corner is
// sampled from the normalized score distribution, so windows covering
// class boundaries are picked far more often than uniform ones.
type Crop struct {
	mu         sync.Mutex
	rng        *rand.Rand
	size       int
	numClasses int
}

// NewCrop creates a crop augmentor extracting size x size windows.
func NewCrop(size, numClasses int, seed int64) *Crop {
	return &Crop{
		rng:        rand.New(rand.NewSource(seed)),
		size:       size,
		numClasses: numClasses,
	}
}

// Augment replaces the sample with a sampled crop. Image and target must
// be the same size and strictly larger than the crop.
func (a *Crop) Augment(s *domain.Sample) error {
	im, t := s.Image, s.Target
	if im.Width != t.Width || im.Height != t.Height {
		return fmt.Errorf("image %dx%d and target %dx%d differ; crop needs equal sizes",
			im.Height, im.Width, t.Height, t.Width)
	}
	if t.Width <= a.size || t.Height <= a.size {
		return fmt.Errorf("sample %dx%d too small for %dx%d crop",
			t.Height, t.Width, a.size, a.size)
	}

	histograms := a.classHistograms(t)
	distribution := a.cumulativeDistribution(histograms)

	a.mu.Lock()
	u := a.rng.Float64()
	a.mu.Unlock()

	cols := t.Width - a.size
	k := sort.SearchFloat64s(distribution, u)
	if k >= len(distribution) {
		k = len(distribution) - 1
	}
	row := k / cols
	col := k - row*cols

	newImg := domain.NewImage(a.size, a.size)
	newTarget := domain.NewLabelMap(a.size, a.size, 0)
	for y := 0; y < a.size; y++ {
		for x := 0; x < a.size; x++ {
			for c := 0; c < 3; c++ {
				newImg.Set(c, y, x, im.At(c, row+y, col+x))
			}
			newTarget.Set(y, x, t.At(row+y, col+x))
		}
	}

	s.Image = newImg
	s.Target = newTarget
	return nil
}

// classHistograms computes, for every valid crop corner (i, j), the class
// histogram of the size x size window anchored there. Rows and columns are
// filled by sliding-window dynamic programming: the first corner costs
// O(size^2), corners in the first row and column O(size), and every other
// corner O(numClasses) via inclusion-exclusion over three neighbors.
func (a *Crop) classHistograms(t *domain.LabelMap) []int32 {
	rows := t.Height - a.size
	cols := t.Width - a.size
	nc := a.numClasses
	h := make([]int32, rows*cols*nc)

	cell := func(i, j int) []int32 {
		base := (i*cols + j) * nc
		return h[base : base+nc]
	}
	bump := func(dst []int32, class uint8, delta int32) {
		if class != domain.IgnoreLabel && int(class) < nc {
			dst[class] += delta
		}
	}

	// Top-left corner: count the full window.
	first := cell(0, 0)
	for y := 0; y < a.size; y++ {
		for x := 0; x < a.size; x++ {
			bump(first, t.At(y, x), 1)
		}
	}

	// First row: slide one column right of the previous corner.
	for j := 1; j < cols; j++ {
		dst := cell(0, j)
		copy(dst, cell(0, j-1))
		for y := 0; y < a.size; y++ {
			bump(dst, t.At(y, j-1), -1)
			bump(dst, t.At(y, j+a.size-1), 1)
		}
	}

	for i := 1; i < rows; i++ {
		// First column: slide one row down.
		dst := cell(i, 0)
		copy(dst, cell(i-1, 0))
		for x := 0; x < a.size; x++ {
			bump(dst, t.At(i-1, x), -1)
			bump(dst, t.At(i+a.size-1, x), 1)
		}

		// Remaining corners: inclusion-exclusion over the three
		// previously computed neighbors, then fix the four corner
		// pixels of the overlap.
		for j := 1; j < cols; j++ {
			dst := cell(i, j)
			up := cell(i-1, j)
			left := cell(i, j-1)
			diag := cell(i-1, j-1)
			for c := 0; c < nc; c++ {
				dst[c] = up[c] + left[c] - diag[c]
			}
			bump(dst, t.At(i-1, j-1), 1)
			bump(dst, t.At(i-1, j+a.size-1), -1)
			bump(dst, t.At(i+a.size-1, j-1), -1)
			bump(dst, t.At(i+a.size-1, j+a.size-1), 1)
		}
	}

	return h
}

// cumulativeDistribution scores each corner by the entropy of its class
// histogram, scaled by the labeled pixel count, and returns the normalized
// cumulative distribution over all corners.
func (a *Crop) cumulativeDistribution(histograms []int32) []float64 {
	nc := a.numClasses
	n := len(histograms) / nc
	window := float64(a.size * a.size)

	scores := make([]float64, n)
	p := make([]float64, nc)
	sum := 0.0
	for k := 0; k < n; k++ {
		hist := histograms[k*nc : (k+1)*nc]
		m := 0.0
		for _, v := range hist {
			m += float64(v)
		}
		if m > 0 {
			for c, v := range hist {
				p[c] = float64(v) / m
			}
			// Weight by the labeled fraction of the window so mostly
			// ignored regions score low even if what remains is mixed.
			scores[k] = m * stat.Entropy(p) / window
		}
		sum += scores[k]
	}

	cum := make([]float64, n)
	previous := 0.0
	for k := range scores {
		if sum > 0 {
			previous += scores[k] / sum
		} else {
			previous += 1 / float64(n)
		}
		cum[k] = previous
	}
	return cum
}

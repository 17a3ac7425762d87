package transform

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/seglab/segfeed/internal/domain"
)

// Translation shifts image and target by a random offset in each axis.
// The image is filled by reflection at the borders; shifted-in target
// pixels get the ignore label so invented content never trains the loss.
type Translation struct {
	mu     sync.Mutex
	rng    *rand.Rand
	offset int
}

// NewTranslation creates a translation augmentor with the given maximum
// offset in pixels.
func NewTranslation(offset int, seed int64) *Translation {
	if offset < 0 {
		offset = -offset
	}
	return &Translation{rng: rand.New(rand.NewSource(seed)), offset: offset}
}

// Augment shifts the pair. Image and target must be the same size.
func (a *Translation) Augment(s *domain.Sample) error {
	im, t := s.Image, s.Target
	if im.Width != t.Width || im.Height != t.Height {
		return fmt.Errorf("image %dx%d and target %dx%d differ; translation needs equal sizes",
			im.Height, im.Width, t.Height, t.Width)
	}

	a.mu.Lock()
	ty := a.rng.Intn(2*a.offset+1) - a.offset
	tx := a.rng.Intn(2*a.offset+1) - a.offset
	a.mu.Unlock()

	newImg := domain.NewImage(im.Width, im.Height)
	newTarget := domain.NewLabelMap(t.Width, t.Height, 0)

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			sy, sx := y+ty, x+tx
			outside := false

			if sy < 0 {
				sy = -sy
				outside = true
			} else if sy >= im.Height {
				sy = 2*im.Height - sy - 1
				outside = true
			}
			if sx < 0 {
				sx = -sx
				outside = true
			} else if sx >= im.Width {
				sx = 2*im.Width - sx - 1
				outside = true
			}

			for c := 0; c < 3; c++ {
				newImg.Set(c, y, x, im.At(c, sy, sx))
			}
			if outside {
				newTarget.Set(y, x, domain.IgnoreLabel)
			} else {
				newTarget.Set(y, x, t.At(sy, sx))
			}
		}
	}

	s.Image = newImg
	s.Target = newTarget
	return nil
}

// Zooming rescales the pair by a random factor in [1-f, 1+f] and restores
// the original frame: zoom-in crops the center, zoom-out embeds the result
// in a zero image with an ignore-label border.
type Zooming struct {
	mu     sync.Mutex
	rng    *rand.Rand
	factor float64
}

// NewZooming creates a zooming augmentor with the given maximum factor.
func NewZooming(factor float64, seed int64) *Zooming {
	return &Zooming{rng: rand.New(rand.NewSource(seed)), factor: factor}
}

// Augment zooms the pair. Image and target must be the same size.
func (a *Zooming) Augment(s *domain.Sample) error {
	im, t := s.Image, s.Target
	if im.Width != t.Width || im.Height != t.Height {
		return fmt.Errorf("image %dx%d and target %dx%d differ; zooming needs equal sizes",
			im.Height, im.Width, t.Height, t.Width)
	}

	a.mu.Lock()
	factor := 1 - a.factor + a.rng.Float64()*2*a.factor
	a.mu.Unlock()

	newH := int(float64(im.Height) * factor)
	newW := int(float64(im.Width) * factor)
	if newH < 1 || newW < 1 {
		return fmt.Errorf("zoom factor %.3f collapses a %dx%d image", factor, im.Height, im.Width)
	}

	scaledImg := resizeImageBilinear(im, newW, newH)
	scaledTarget := resizeLabelsNearest(t, newW, newH)

	outImg := domain.NewImage(im.Width, im.Height)
	outTarget := domain.NewLabelMap(t.Width, t.Height, domain.IgnoreLabel)

	if factor > 1 {
		// Zoomed in: crop the center back to the original frame.
		rowOff := (newH - im.Height) / 2
		colOff := (newW - im.Width) / 2
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				for c := 0; c < 3; c++ {
					outImg.Set(c, y, x, scaledImg.At(c, y+rowOff, x+colOff))
				}
				outTarget.Set(y, x, scaledTarget.At(y+rowOff, x+colOff))
			}
		}
	} else {
		// Zoomed out: center the result inside the original frame.
		rowOff := (im.Height - newH) / 2
		colOff := (im.Width - newW) / 2
		for y := 0; y < newH; y++ {
			for x := 0; x < newW; x++ {
				for c := 0; c < 3; c++ {
					outImg.Set(c, y+rowOff, x+colOff, scaledImg.At(c, y, x))
				}
				outTarget.Set(y+rowOff, x+colOff, scaledTarget.At(y, x))
			}
		}
	}

	s.Image = outImg
	s.Target = outTarget
	return nil
}

// Rotation rotates the pair around the image center by a random angle in
// [-max, max] degrees. The image samples bilinearly with a zero border; the
// target samples nearest with an ignore-label border.
type Rotation struct {
	mu       sync.Mutex
	rng      *rand.Rand
	maxAngle float64
}

// NewRotation creates a rotation augmentor with the given maximum angle in
// degrees.
func NewRotation(maxAngle float64, seed int64) *Rotation {
	return &Rotation{rng: rand.New(rand.NewSource(seed)), maxAngle: math.Abs(maxAngle)}
}

// Augment rotates the pair. Image and target must be the same size.
func (a *Rotation) Augment(s *domain.Sample) error {
	im, t := s.Image, s.Target
	if im.Width != t.Width || im.Height != t.Height {
		return fmt.Errorf("image %dx%d and target %dx%d differ; rotation needs equal sizes",
			im.Height, im.Width, t.Height, t.Width)
	}

	a.mu.Lock()
	angle := -a.maxAngle + a.rng.Float64()*2*a.maxAngle
	a.mu.Unlock()

	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(im.Width) / 2
	cy := float64(im.Height) / 2

	newImg := domain.NewImage(im.Width, im.Height)
	newTarget := domain.NewLabelMap(t.Width, t.Height, domain.IgnoreLabel)

	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			// Inverse mapping: where in the source does this output
			// pixel come from.
			dx := float64(x) - cx
			dy := float64(y) - cy
			sx := cos*dx - sin*dy + cx
			sy := sin*dx + cos*dy + cy

			if sx < 0 || sy < 0 || sx > float64(im.Width-1) || sy > float64(im.Height-1) {
				continue
			}

			x0, y0 := int(sx), int(sy)
			x1 := clampInt(x0+1, 0, im.Width-1)
			y1 := clampInt(y0+1, 0, im.Height-1)
			wx := sx - float64(x0)
			wy := sy - float64(y0)

			for c := 0; c < 3; c++ {
				top := float64(im.At(c, y0, x0))*(1-wx) + float64(im.At(c, y0, x1))*wx
				bot := float64(im.At(c, y1, x0))*(1-wx) + float64(im.At(c, y1, x1))*wx
				newImg.Set(c, y, x, float32(top*(1-wy)+bot*wy))
			}

			nx := clampInt(int(sx+0.5), 0, t.Width-1)
			ny := clampInt(int(sy+0.5), 0, t.Height-1)
			newTarget.Set(y, x, t.At(ny, nx))
		}
	}

	s.Image = newImg
	s.Target = newTarget
	return nil
}

// Subsample shrinks the pair by an integer factor. The image resizes
// bilinearly; each target pixel becomes the majority class of its source
// window, or the ignore label when no class wins more than half the window.
type Subsample struct {
	factor int
}

// NewSubsample creates a subsampling augmentor with the given factor.
func NewSubsample(factor int) *Subsample {
	return &Subsample{factor: factor}
}

// Augment shrinks the pair.
func (a *Subsample) Augment(s *domain.Sample) error {
	f := a.factor
	if f <= 1 {
		return nil
	}
	im, t := s.Image, s.Target
	if im.Width/f < 1 || im.Height/f < 1 || t.Width/f < 1 || t.Height/f < 1 {
		return fmt.Errorf("subsample factor %d collapses a %dx%d sample", f, im.Height, im.Width)
	}

	s.Image = resizeImageBilinear(im, im.Width/f, im.Height/f)

	newW, newH := t.Width/f, t.Height/f
	halfWindow := f * f / 2
	out := domain.NewLabelMap(newW, newH, 0)

	var histogram [256]int
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			for i := range histogram {
				histogram[i] = 0
			}
			for sy := y * f; sy < (y+1)*f; sy++ {
				for sx := x * f; sx < (x+1)*f; sx++ {
					histogram[t.At(sy, sx)]++
				}
			}

			mode := 0
			for k, count := range histogram {
				if count > histogram[mode] {
					mode = k
				}
			}

			// Ambiguous windows are ignored rather than guessed.
			if histogram[mode] > halfWindow {
				out.Set(y, x, uint8(mode))
			} else {
				out.Set(y, x, domain.IgnoreLabel)
			}
		}
	}

	s.Target = out
	return nil
}

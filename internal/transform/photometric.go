package transform

import (
	"math"
	"math/rand"
	"sync"

	"github.com/seglab/segfeed/internal/domain"
)

// Gamma applies a random non-linear intensity curve. Strength in [0, 0.5]
// controls how far the curve can bend.
type Gamma struct {
	mu       sync.Mutex
	rng      *rand.Rand
	strength float64
}

// NewGamma creates a gamma augmentor with the given strength and seed.
func NewGamma(strength float64, seed int64) *Gamma {
	if strength < 0 {
		strength = 0
	}
	if strength > 0.5 {
		strength = 0.5
	}
	return &Gamma{rng: rand.New(rand.NewSource(seed)), strength: strength}
}

// Augment raises every pixel to a randomly drawn gamma.
func (a *Gamma) Augment(s *domain.Sample) error {
	a.mu.Lock()
	u := a.rng.Float64()*2*a.strength - a.strength
	a.mu.Unlock()

	// Map the uniform draw through a log ratio so gamma is symmetric
	// around 1 in brightness effect rather than in value.
	invSqrt2 := 1.0 / math.Sqrt2
	gamma := math.Log(0.5+invSqrt2*u) / math.Log(0.5-invSqrt2*u)

	for i, v := range s.Image.Pix {
		s.Image.Pix[i] = float32(math.Pow(float64(v), gamma))
	}
	return nil
}

// Saturation rescales the HSV saturation channel by a random factor drawn
// from [min, max].
type Saturation struct {
	mu       sync.Mutex
	rng      *rand.Rand
	min, max float64
}

// NewSaturation creates a saturation augmentor.
func NewSaturation(min, max float64, seed int64) *Saturation {
	return &Saturation{rng: rand.New(rand.NewSource(seed)), min: min, max: max}
}

// Augment rescales the saturation of every pixel.
func (a *Saturation) Augment(s *domain.Sample) error {
	a.mu.Lock()
	factor := a.min + a.rng.Float64()*(a.max-a.min)
	a.mu.Unlock()

	im := s.Image
	rp, gp, bp := im.Plane(0), im.Plane(1), im.Plane(2)
	for i := range rp {
		h, sat, v := rgbToHSV(rp[i], gp[i], bp[i])
		sat = float32(math.Max(0, math.Min(1, float64(sat)*factor)))
		rp[i], gp[i], bp[i] = hsvToRGB(h, sat, v)
	}
	return nil
}

// Hue shifts the HSV hue channel by a random offset in degrees drawn from
// [min, max].
type Hue struct {
	mu       sync.Mutex
	rng      *rand.Rand
	min, max float64
}

// NewHue creates a hue augmentor.
func NewHue(min, max float64, seed int64) *Hue {
	return &Hue{rng: rand.New(rand.NewSource(seed)), min: min, max: max}
}

// Augment rotates the hue of every pixel.
func (a *Hue) Augment(s *domain.Sample) error {
	a.mu.Lock()
	offset := float32(a.min + a.rng.Float64()*(a.max-a.min))
	a.mu.Unlock()

	im := s.Image
	rp, gp, bp := im.Plane(0), im.Plane(1), im.Plane(2)
	for i := range rp {
		h, sat, v := rgbToHSV(rp[i], gp[i], bp[i])
		h += offset
		if h >= 360 {
			h -= 360
		} else if h < 0 {
			h += 360
		}
		rp[i], gp[i], bp[i] = hsvToRGB(h, sat, v)
	}
	return nil
}

// rgbToHSV converts [0, 1] RGB to hue in [0, 360), saturation and value in
// [0, 1]. Inputs outside [0, 1] are clamped.
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	v = max
	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case r:
		h = 60 * ((g - b) / delta)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// hsvToRGB converts hue in [0, 360), saturation and value in [0, 1] back
// to RGB.
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	if s <= 0 {
		return v, v, v
	}

	sector := h / 60
	i := int(sector) % 6
	f := sector - float32(int(sector))

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch i {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

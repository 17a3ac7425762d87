package decode

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"

	"github.com/seglab/segfeed/internal/domain"
)

// Interpolation selects the resampling kernel for the deterministic
// target-size resize of source images. Targets always resize with nearest
// neighbor so class ids are never blended.
type Interpolation int

const (
	InterpBilinear Interpolation = iota
	InterpNearest
	InterpCatmullRom
)

// ParseInterpolation maps a configuration string to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "bilinear":
		return InterpBilinear, nil
	case "nearest":
		return InterpNearest, nil
	case "catmullrom":
		return InterpCatmullRom, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

func (in Interpolation) scaler() draw.Interpolator {
	switch in {
	case InterpNearest:
		return draw.NearestNeighbor
	case InterpCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// ImageLoader decodes one source image file.
type ImageLoader interface {
	Load(path string) (*domain.Image, error)
}

// TargetLoader decodes one label image file.
type TargetLoader interface {
	Load(path string) (*domain.LabelMap, error)
}

// decodeFile reads and decodes an image file of any registered format.
func decodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.DecodeError{Path: path, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// RGBLoader decodes source images to [0, 1] float planes, optionally
// resizing to a fixed size first.
type RGBLoader struct {
	// TargetWidth and TargetHeight, when positive, force every decoded
	// image to this size.
	TargetWidth  int
	TargetHeight int

	// Interp is the resampling kernel used for the resize.
	Interp Interpolation
}

// Load decodes the image at path.
func (l *RGBLoader) Load(path string) (*domain.Image, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	rgba := toRGBA(img)
	if l.TargetWidth > 0 && l.TargetHeight > 0 &&
		(rgba.Bounds().Dx() != l.TargetWidth || rgba.Bounds().Dy() != l.TargetHeight) {
		dst := image.NewRGBA(image.Rect(0, 0, l.TargetWidth, l.TargetHeight))
		l.Interp.scaler().Scale(dst, dst.Bounds(), rgba, rgba.Bounds(), draw.Src, nil)
		rgba = dst
	}

	return rgbaToPlanes(rgba), nil
}

// GrayLoader decodes label images whose pixel values are the class ids.
type GrayLoader struct {
	TargetWidth  int
	TargetHeight int
}

// Load decodes the label image at path.
func (l *GrayLoader) Load(path string) (*domain.LabelMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return grayToLabels(toGray(img), l.TargetWidth, l.TargetHeight), nil
}

// ValueMapLoader decodes a grayscale label image and remaps every value
// through a 256-entry table. Useful for datasets whose stored ids differ
// from the training ids (e.g. mapping unused classes to the ignore label).
type ValueMapLoader struct {
	Map          [256]uint8
	TargetWidth  int
	TargetHeight int
}

// Load decodes and remaps the label image at path.
func (l *ValueMapLoader) Load(path string) (*domain.LabelMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	gray := toGray(img)
	for i, v := range gray.Pix {
		gray.Pix[i] = l.Map[v]
	}
	return grayToLabels(gray, l.TargetWidth, l.TargetHeight), nil
}

// RGB is a color key for ColorMapLoader.
type RGB struct {
	R, G, B uint8
}

// ColorMapLoader decodes a color-coded label image and maps each pixel
// color to a class id. A color missing from the table is a decode error
// for the whole sample.
type ColorMapLoader struct {
	Map          map[RGB]uint8
	TargetWidth  int
	TargetHeight int
}

// Load decodes and maps the label image at path.
func (l *ColorMapLoader) Load(path string) (*domain.LabelMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	rgba := toRGBA(img)
	bounds := rgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			key := RGB{rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2]}
			c, ok := l.Map[key]
			if !ok {
				return nil, &domain.DecodeError{
					Path: path,
					Err:  fmt.Errorf("unknown color (%d, %d, %d)", key.R, key.G, key.B),
				}
			}
			gray.Pix[y*gray.Stride+x] = c
		}
	}
	return grayToLabels(gray, l.TargetWidth, l.TargetHeight), nil
}

// PairLoader loads the image and the target of one dataset entry.
type PairLoader struct {
	Image  ImageLoader
	Target TargetLoader
}

// Load decodes both halves of ref into a Sample. Seq is left for the
// caller to fill in.
func (l *PairLoader) Load(ref domain.SampleRef) (*domain.Sample, error) {
	img, err := l.Image.Load(ref.ImagePath)
	if err != nil {
		return nil, err
	}
	target, err := l.Target.Load(ref.TargetPath)
	if err != nil {
		return nil, err
	}
	return &domain.Sample{Image: img, Target: target, Ref: ref}, nil
}

// toRGBA converts any decoded image to RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// toGray converts any decoded image to 8-bit grayscale. For label images
// stored with equal RGB channels this is the identity on the stored value.
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// rgbaToPlanes converts an RGBA image to [0, 1] float planes, dropping alpha.
func rgbaToPlanes(rgba *image.RGBA) *domain.Image {
	bounds := rgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	out := domain.NewImage(w, h)
	rp, gp, bp := out.Plane(0), out.Plane(1), out.Plane(2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			rp[y*w+x] = float32(rgba.Pix[i]) / 255
			gp[y*w+x] = float32(rgba.Pix[i+1]) / 255
			bp[y*w+x] = float32(rgba.Pix[i+2]) / 255
		}
	}
	return out
}

// grayToLabels converts a grayscale image to a LabelMap, resizing with
// nearest neighbor when a target size is set.
func grayToLabels(gray *image.Gray, targetW, targetH int) *domain.LabelMap {
	if targetW > 0 && targetH > 0 &&
		(gray.Bounds().Dx() != targetW || gray.Bounds().Dy() != targetH) {
		dst := image.NewGray(image.Rect(0, 0, targetW, targetH))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)
		gray = dst
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	m := domain.NewLabelMap(w, h, 0)
	for y := 0; y < h; y++ {
		row := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(m.Classes[y*w:(y+1)*w], gray.Pix[row:row+w])
	}
	return m
}

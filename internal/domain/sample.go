package domain

// IgnoreLabel marks target pixels that carry no class. Ignored pixels are
// left all-zero in the one-hot encoding so they contribute nothing to the
// training loss.
const IgnoreLabel uint8 = 255

// SampleRef identifies one dataset entry. Immutable once enumerated.
type SampleRef struct {
	// ImagePath is the path to the source image file.
	ImagePath string

	// TargetPath is the path to the label image file.
	TargetPath string
}

// Image is a dense RGB image stored as three float32 planes (CHW layout).
// Pixel values are nominally in [0, 1]; augmentation may move them outside
// that range.
type Image struct {
	Width  int
	Height int

	// Pix holds 3*Height*Width values, plane c starting at c*Height*Width,
	// rows within a plane stored contiguously.
	Pix []float32
}

// NewImage allocates a zeroed image of the given size.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float32, 3*width*height),
	}
}

// At returns the value of channel c at row y, column x.
func (im *Image) At(c, y, x int) float32 {
	return im.Pix[(c*im.Height+y)*im.Width+x]
}

// Set stores v in channel c at row y, column x.
func (im *Image) Set(c, y, x int, v float32) {
	im.Pix[(c*im.Height+y)*im.Width+x] = v
}

// Plane returns the backing slice of channel c.
func (im *Image) Plane(c int) []float32 {
	n := im.Height * im.Width
	return im.Pix[c*n : (c+1)*n]
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := &Image{Width: im.Width, Height: im.Height, Pix: make([]float32, len(im.Pix))}
	copy(out.Pix, im.Pix)
	return out
}

// LabelMap is a dense image of 8-bit class ids.
type LabelMap struct {
	Width  int
	Height int

	// Classes holds Height*Width class ids in row-major order.
	Classes []uint8
}

// NewLabelMap allocates a label map of the given size filled with fill.
func NewLabelMap(width, height int, fill uint8) *LabelMap {
	m := &LabelMap{
		Width:   width,
		Height:  height,
		Classes: make([]uint8, width*height),
	}
	if fill != 0 {
		for i := range m.Classes {
			m.Classes[i] = fill
		}
	}
	return m
}

// At returns the class id at row y, column x.
func (m *LabelMap) At(y, x int) uint8 {
	return m.Classes[y*m.Width+x]
}

// Set stores the class id at row y, column x.
func (m *LabelMap) Set(y, x int, c uint8) {
	m.Classes[y*m.Width+x] = c
}

// Clone returns a deep copy.
func (m *LabelMap) Clone() *LabelMap {
	out := &LabelMap{Width: m.Width, Height: m.Height, Classes: make([]uint8, len(m.Classes))}
	copy(out.Classes, m.Classes)
	return out
}

// Sample is one decoded image/target pair in flight through the pipeline.
type Sample struct {
	Image  *Image
	Target *LabelMap

	// Ref is the dataset entry this sample was decoded from.
	Ref SampleRef

	// Seq is the enumeration sequence number, used by the reorder buffer
	// when ordered output is requested.
	Seq uint64
}

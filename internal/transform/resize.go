package transform

import "github.com/seglab/segfeed/internal/domain"

// resizeImageBilinear resizes float planes with bilinear interpolation.
func resizeImageBilinear(im *domain.Image, newW, newH int) *domain.Image {
	out := domain.NewImage(newW, newH)
	if newW <= 0 || newH <= 0 {
		return out
	}

	sx := float64(im.Width) / float64(newW)
	sy := float64(im.Height) / float64(newH)

	for c := 0; c < 3; c++ {
		src := im.Plane(c)
		dst := out.Plane(c)
		for y := 0; y < newH; y++ {
			fy := (float64(y)+0.5)*sy - 0.5
			y0 := clampInt(int(fy), 0, im.Height-1)
			y1 := clampInt(y0+1, 0, im.Height-1)
			wy := fy - float64(y0)
			if wy < 0 {
				wy = 0
			}
			for x := 0; x < newW; x++ {
				fx := (float64(x)+0.5)*sx - 0.5
				x0 := clampInt(int(fx), 0, im.Width-1)
				x1 := clampInt(x0+1, 0, im.Width-1)
				wx := fx - float64(x0)
				if wx < 0 {
					wx = 0
				}

				top := float64(src[y0*im.Width+x0])*(1-wx) + float64(src[y0*im.Width+x1])*wx
				bot := float64(src[y1*im.Width+x0])*(1-wx) + float64(src[y1*im.Width+x1])*wx
				dst[y*newW+x] = float32(top*(1-wy) + bot*wy)
			}
		}
	}
	return out
}

// resizeLabelsNearest resizes a label map with nearest neighbor so class
// ids are never blended.
func resizeLabelsNearest(m *domain.LabelMap, newW, newH int) *domain.LabelMap {
	out := domain.NewLabelMap(newW, newH, 0)
	if newW <= 0 || newH <= 0 {
		return out
	}

	sx := float64(m.Width) / float64(newW)
	sy := float64(m.Height) / float64(newH)

	for y := 0; y < newH; y++ {
		sy0 := clampInt(int((float64(y)+0.5)*sy), 0, m.Height-1)
		for x := 0; x < newW; x++ {
			sx0 := clampInt(int((float64(x)+0.5)*sx), 0, m.Width-1)
			out.Classes[y*newW+x] = m.Classes[sy0*m.Width+sx0]
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package decode turns dataset files into in-memory samples.
//
// Source images decode to RGB float32 in [0, 1]; targets decode to 8-bit
// class ids, either directly from a grayscale image or through a value or
// color mapping table. Decoding failures are reported as
// *domain.DecodeError so the pipeline can skip the sample.
//
// JPEG, PNG, WebP, BMP and TIFF are supported; the x/image codecs are
// registered here.
package decode

import (
	// Register the standard and extended image codecs.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

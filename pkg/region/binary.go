package region

import (
	"image"

	"github.com/disintegration/imaging"
)

// binaryImage is a two-level raster stored row-major; true is white.
type binaryImage struct {
	w, h int
	pix  []bool
}

// binarize converts to luma and applies a global threshold: gray > threshold is white.
func binarize(img image.Image, threshold uint8) *binaryImage {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := &binaryImage{w: w, h: h, pix: make([]bool, w*h)}
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			out.pix[y*w+x] = row[x*4] > threshold
		}
	}
	return out
}

// pad surrounds the image with a one pixel white frame.
func pad(b *binaryImage) *binaryImage {
	w, h := b.w+2, b.h+2
	out := &binaryImage{w: w, h: h, pix: make([]bool, w*h)}
	for i := range out.pix {
		out.pix[i] = true
	}
	for y := 0; y < b.h; y++ {
		copy(out.pix[(y+1)*w+1:(y+1)*w+1+b.w], b.pix[y*b.w:(y+1)*b.w])
	}
	return out
}

// Package recognize sends located regions to a text recognition service.
package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// Recognizer returns the full text found in a PNG payload. An explicit service failure is
// returned as a *tiperr.Error of kind OCR_SERVICE_FAILED; an empty string is a valid result.
type Recognizer interface {
	Recognize(ctx context.Context, imagePNG []byte) (string, error)
}

// Func adapts a plain function to Recognizer.
type Func func(ctx context.Context, imagePNG []byte) (string, error)

func (f Func) Recognize(ctx context.Context, imagePNG []byte) (string, error) {
	return f(ctx, imagePNG)
}

// Compose stacks header above content on a black canvas as wide as the wider of the two.
func Compose(header, content image.Image) *image.NRGBA {
	hb, cb := header.Bounds(), content.Bounds()
	w := hb.Dx()
	if cb.Dx() > w {
		w = cb.Dx()
	}
	out := imaging.New(w, hb.Dy()+cb.Dy(), color.NRGBA{0, 0, 0, 255})
	out = imaging.Paste(out, header, image.Pt(0, 0))
	out = imaging.Paste(out, content, image.Pt(0, hb.Dy()))
	return out
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize collapses each embedded line break into a single space.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\r", " ")
}

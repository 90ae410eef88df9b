// Package reader runs the tip pipeline: locate regions, recognize text, parse the tip.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"stonktip/pkg/logging"
	"stonktip/pkg/parse"
	"stonktip/pkg/recognize"
	"stonktip/pkg/region"
	"stonktip/pkg/tip"
	"stonktip/pkg/tiperr"
)

// Reader is safe for concurrent use; its only shared state is the recognizer handle.
type Reader struct {
	locator    region.Locator
	recognizer recognize.Recognizer
	log        *logging.Logger
}

func New(locator region.Locator, recognizer recognize.Recognizer, log *logging.Logger) *Reader {
	if log == nil {
		log = logging.New("tip-reader")
	}
	return &Reader{locator: locator, recognizer: recognizer, log: log}
}

// Process returns (true, tip) on success and (false, tip.Failed()) otherwise.
// The returned tip never carries a source URL.
func (r *Reader) Process(ctx context.Context, img image.Image) (bool, tip.Tip) {
	t, err := r.read(ctx, img)
	if err != nil {
		r.logFailure(err)
		return false, tip.Failed()
	}
	return true, t
}

// ProcessBytes decodes an encoded image first. Undecodable data is a region failure.
func (r *Reader) ProcessBytes(ctx context.Context, data []byte) (bool, tip.Tip) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		r.logFailure(tiperr.NewRegionDetectionError(fmt.Sprintf("cannot decode image (%d bytes): %v", len(data), err)))
		return false, tip.Failed()
	}
	return r.Process(ctx, img)
}

// Text runs the pipeline up to recognition and returns the normalized text.
func (r *Reader) Text(ctx context.Context, img image.Image) (string, error) {
	header, content, err := r.locator.Locate(img)
	if err != nil {
		return "", err
	}
	payload, err := recognize.EncodePNG(recognize.Compose(header, content))
	if err != nil {
		return "", tiperr.NewRegionDetectionError(err.Error())
	}
	text, err := r.recognizer.Recognize(ctx, payload)
	if err != nil {
		var te *tiperr.Error
		if !errors.As(err, &te) {
			err = tiperr.NewOCRServiceError(err.Error(), err)
		}
		return "", err
	}
	return recognize.Normalize(text), nil
}

func (r *Reader) read(ctx context.Context, img image.Image) (tip.Tip, error) {
	text, err := r.Text(ctx, img)
	if err != nil {
		return tip.Failed(), err
	}
	r.log.Debug("recognized text", "text", text)
	return parse.Parse(text)
}

func (r *Reader) logFailure(err error) {
	var te *tiperr.Error
	if !errors.As(err, &te) {
		r.log.Error("tip pipeline failed", "err", err)
		return
	}
	kv := []interface{}{"kind", string(te.Kind)}
	if te.Stage != tiperr.StageNone {
		kv = append(kv, "stage", string(te.Stage))
	}
	kv = append(kv, "err", te)
	r.log.Error("tip pipeline failed", kv...)
}

package recognize

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a recognizer backend.
type Options struct {
	Backend            string // vision | tesseract | gemini
	VisionCredentials  string
	TesseractLanguages string
	GeminiAPIKey       string
	GeminiModel        string
}

// New builds the configured backend. The returned closer releases the service connection.
func New(ctx context.Context, opts Options) (Recognizer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(opts.Backend) {
	case "", "vision":
		v, err := NewVision(ctx, opts.VisionCredentials)
		if err != nil {
			return nil, noop, err
		}
		return v, v.Close, nil
	case "tesseract":
		return NewTesseract(opts.TesseractLanguages), noop, nil
	case "gemini":
		g, err := NewGemini(ctx, opts.GeminiAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return g, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown recognizer %q", opts.Backend)
	}
}

package recognize

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"stonktip/pkg/tiperr"
)

const DefaultTesseractLanguages = "eng+chi_tra+chi_sim+kor"

// Tesseract runs a local Tesseract engine. A client is created per call since gosseract
// clients are not safe for concurrent use.
type Tesseract struct {
	languages []string
}

func NewTesseract(languages string) *Tesseract {
	if languages == "" {
		languages = DefaultTesseractLanguages
	}
	return &Tesseract{languages: strings.Split(languages, "+")}
}

func (t *Tesseract) Recognize(ctx context.Context, imagePNG []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", tiperr.NewOCRServiceError("tesseract cancelled", err)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", tiperr.NewOCRServiceError("tesseract language setup failed", err)
	}
	if err := client.SetImageFromBytes(imagePNG); err != nil {
		return "", tiperr.NewOCRServiceError("tesseract rejected image", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", tiperr.NewOCRServiceError("tesseract recognition failed", err)
	}
	return strings.TrimSpace(text), nil
}

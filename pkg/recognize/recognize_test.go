package recognize

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/disintegration/imaging"
	"google.golang.org/genproto/googleapis/rpc/status"

	"stonktip/pkg/tiperr"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"TURN 5\nCeline":       "TURN 5 Celine",
		"a\r\nb\rc":            "a b c",
		"no breaks":            "no breaks",
		"":                     "",
		"double\n\nbreak here": "double  break here",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComposeStacksHeaderAboveContent(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	header := imaging.New(30, 10, red)
	content := imaging.New(50, 20, blue)

	out := Compose(header, content)
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
	if got := out.NRGBAAt(5, 5); got != red {
		t.Fatalf("header pixel = %v", got)
	}
	if got := out.NRGBAAt(5, 15); got != blue {
		t.Fatalf("content pixel = %v", got)
	}
	if got := out.NRGBAAt(40, 5); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("padding pixel = %v", got)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := imaging.New(8, 4, color.NRGBA{10, 20, 30, 255})
	b, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Fatalf("unexpected bounds %v", back.Bounds())
	}
}

func TestFuncAdapter(t *testing.T) {
	var r Recognizer = Func(func(ctx context.Context, p []byte) (string, error) {
		return "hello", nil
	})
	got, err := r.Recognize(context.Background(), nil)
	if err != nil || got != "hello" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestVisionText(t *testing.T) {
	ok := &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
		TextAnnotations: []*visionpb.EntityAnnotation{
			{Description: "TURN 5\nCeline"},
			{Description: "TURN"},
		},
	}}}
	got, err := visionText(ok)
	if err != nil || got != "TURN 5\nCeline" {
		t.Fatalf("got %q err=%v", got, err)
	}

	empty := &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{}}}
	if got, err := visionText(empty); err != nil || got != "" {
		t.Fatalf("empty response: got %q err=%v", got, err)
	}

	failed := &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
		Error: &status.Status{Code: 8, Message: "quota exhausted"},
	}}}
	_, err = visionText(failed)
	if k, _ := tiperr.KindOf(err); k != tiperr.KindOCRService {
		t.Fatalf("expected OCR service error got %v", err)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, _, err := New(context.Background(), Options{Backend: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, _, err := New(context.Background(), Options{Backend: "gemini"}); err == nil {
		t.Fatalf("gemini without key must fail")
	}
	r, closer, err := New(context.Background(), Options{Backend: "tesseract"})
	if err != nil {
		t.Fatalf("tesseract: %v", err)
	}
	defer closer()
	if tr, ok := r.(*Tesseract); !ok || len(tr.languages) != 4 {
		t.Fatalf("unexpected tesseract %#v", r)
	}
}

package recognize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"stonktip/pkg/tiperr"
)

const DefaultGeminiModel = "gemini-2.5-flash"

const transcribeInstruction = `Transcribe every line of text in this game screenshot exactly as written, top to bottom.
Keep the original language and punctuation. Do not translate, summarize or add commentary.
If there is no text, reply with an empty message.`

// Gemini transcribes the image with a Gemini vision model.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Recognize(ctx context.Context, imagePNG []byte) (string, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribeInstruction},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: imagePNG}},
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return "", tiperr.NewOCRServiceError("gemini API call failed", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/modaworks/curator/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a vision provider backed by Google Gemini
type Gemini struct {
	apiKey string
}

// New returns a new Gemini provider. The API key is read from
// GEMINI_API_KEY, falling back to GOOGLE_API_KEY.
func New() (*Gemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY environment variable not set")
	}
	return &Gemini{apiKey: apiKey}, nil
}

// DefaultModel returns the model name to use, honoring GEMINI_MODEL.
func DefaultModel() string {
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		return model
	}
	return "gemini-2.5-flash"
}

// ClassifyImage sends one image plus the classification prompt to Gemini and
// returns the raw response text. The response MIME type is pinned to JSON so
// the model answers with a bare object rather than prose.
func (g *Gemini) ClassifyImage(ctx context.Context, config providers.Config, image providers.Image) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: image.MIMEType, Data: image.Data},
		genai.Text(config.Prompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

package llm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiImages generates images with a Gemini model restricted to IMAGE output.
type GeminiImages struct {
	client *genai.Client
}

// NewGeminiImages creates the genai client. endpoint optionally overrides the API base URL.
func NewGeminiImages(ctx context.Context, apiKey, endpoint string) (*GeminiImages, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini image generation requires GEMINI_API_KEY")
	}
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client for image generation: %w", err)
	}
	return &GeminiImages{client: client}, nil
}

// GenerateImage calls Gemini and returns the first image blob of the response.
// Gemini has no negative prompt parameter, so it is folded into the prompt.
func (g *GeminiImages) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	model := g.client.GenerativeModel(req.Model)
	setResponseModality(model, []string{"IMAGE"})

	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt += "\nAvoid: " + req.NegativePrompt
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	logResponse("GeminiImages", fmt.Sprintf("candidates=%d", len(resp.Candidates)))
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			blob, ok := part.(genai.Blob)
			if !ok || len(blob.Data) == 0 {
				continue
			}
			mimeType := blob.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return &Image{Data: blob.Data, Model: req.Model, MimeType: mimeType}, nil
		}
	}

	log.Warn().
		Str("model", req.Model).
		Int("candidates", len(resp.Candidates)).
		Msg("No image blob in Gemini response; ensure the model supports IMAGE output")
	return nil, ErrEmptyImage
}

// Close releases the underlying client.
func (g *GeminiImages) Close() error {
	return g.client.Close()
}

// setResponseModality sets model.ResponseModality when the genai SDK exposes it.
// Uses reflection so it no-ops on SDKs that don't have the field.
func setResponseModality(model *genai.GenerativeModel, modalities []string) {
	v := reflect.ValueOf(model).Elem()
	f := v.FieldByName("ResponseModality")
	if !f.IsValid() || !f.CanSet() {
		log.Debug().Msg("ResponseModality not available on GenerativeModel")
		return
	}
	if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
		f.Set(reflect.ValueOf(modalities))
	}
}

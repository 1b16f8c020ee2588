package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ImagenImages generates images through the Imagen models of the unified genai SDK.
type ImagenImages struct {
	client *genai.Client
}

// NewImagenImages creates a unified genai client. endpoint optionally overrides the API base URL.
func NewImagenImages(ctx context.Context, apiKey, endpoint string) (*ImagenImages, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("imagen image generation requires GEMINI_API_KEY")
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize unified genai client: %w", err)
	}
	return &ImagenImages{client: client}, nil
}

// GenerateImage requests a single JPEG image.
func (g *ImagenImages) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	resp, err := g.client.Models.GenerateImages(ctx, req.Model, req.Prompt, &genai.GenerateImagesConfig{
		NegativePrompt: req.NegativePrompt,
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		return nil, err
	}
	for _, gen := range resp.GeneratedImages {
		if gen == nil || gen.Image == nil || len(gen.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := gen.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		return &Image{Data: gen.Image.ImageBytes, Model: req.Model, MimeType: mimeType}, nil
	}
	return nil, ErrEmptyImage
}

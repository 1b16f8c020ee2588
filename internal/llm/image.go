package llm

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/pipeline"
)

// ImageGenerator is implemented by each text-to-image backend.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// ImageRequest describes one text-to-image call.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string // what the image should avoid, e.g. "blurry"
	Model          string // backend default when empty
}

// Image represents a generated image
type Image struct {
	Data     []byte
	Model    string
	MimeType string // e.g. "image/png", "image/jpeg"
}

// Size returns the payload length in bytes.
func (i *Image) Size() int64 {
	return int64(len(i.Data))
}

// ImageStep turns a prompt into an image.
type ImageStep struct {
	gen        ImageGenerator
	capability string
	base       ImageRequest
}

// ImageOption configures an ImageStep.
type ImageOption func(*ImageRequest)

// WithNegativePrompt sets the negative prompt hint.
func WithNegativePrompt(s string) ImageOption {
	return func(r *ImageRequest) { r.NegativePrompt = s }
}

// WithModel selects the image model.
func WithModel(model string) ImageOption {
	return func(r *ImageRequest) { r.Model = model }
}

// NewImageStep returns a step over gen. capability names the service in errors and logs.
func NewImageStep(gen ImageGenerator, capability string, opts ...ImageOption) *ImageStep {
	s := &ImageStep{gen: gen, capability: capability}
	for _, opt := range opts {
		opt(&s.base)
	}
	return s
}

// Invoke generates one image for prompt. Failures, including an empty
// payload, come back as *TransportError.
func (s *ImageStep) Invoke(ctx context.Context, prompt string) (*Image, error) {
	req := s.base
	req.Prompt = prompt

	log.Debug().
		Str("capability", s.capability).
		Str("model", req.Model).
		Str("prompt", preview(prompt, 50)).
		Msg("Generating image")

	if s.gen == nil {
		return nil, &TransportError{Capability: s.capability, Err: ErrUnknownProvider}
	}

	img, err := s.gen.GenerateImage(ctx, req)
	if err != nil {
		return nil, &TransportError{Capability: s.capability, Err: err}
	}
	if img == nil || len(img.Data) == 0 {
		return nil, &TransportError{Capability: s.capability, Err: ErrEmptyImage}
	}

	log.Info().
		Str("caller", s.capability).
		Int64("image_size_bytes", img.Size()).
		Str("mime_type", img.MimeType).
		Str("model", img.Model).
		Msg("Image generated")
	return img, nil
}

// ImageData extracts the raw bytes of an image, the bytes output parser for images.
func ImageData() pipeline.Step[*Image, []byte] {
	return pipeline.Map(func(img *Image) []byte { return img.Data })
}

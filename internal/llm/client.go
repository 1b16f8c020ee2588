package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxResponseLogBytes is the max length of a model response to log in full (to avoid huge logs).
const maxResponseLogBytes = 8192

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://host.docker.internal:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil || base.Host == "" {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid API endpoint, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = path.Join(e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	if req.URL.RawQuery != "" {
		req2.URL.RawQuery = req.URL.RawQuery
	}
	return e.next.RoundTrip(req2)
}

// logResponse logs a model response, truncating if over maxResponseLogBytes.
func logResponse(caller, raw string) {
	if len(raw) <= maxResponseLogBytes {
		log.Info().Str("caller", caller).Str("response", raw).Msg("Model response")
		return
	}
	log.Info().
		Str("caller", caller).
		Str("response", raw[:maxResponseLogBytes]+"... [truncated]").
		Int("response_len", len(raw)).
		Msg("Model response")
}

// preview shortens s for debug logs.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Client bundles the text model and image generator a run uses, plus the
// defaults applied to every image request.
type Client struct {
	TextProvider   string
	Text           llms.Model
	ImageProvider  string
	Images         ImageGenerator
	ImageModel     string
	NegativePrompt string
}

// NewClient builds the configured text model and image generator.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	text, err := NewTextModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	images, err := NewImageGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("text_provider", cfg.TextProvider).
		Str("text_model", cfg.TextModel).
		Str("image_provider", cfg.ImageProvider).
		Str("image_model", cfg.ImageModel).
		Str("negative_prompt", cfg.ImageNegativePrompt).
		Msg("LLM client initialized")

	return &Client{
		TextProvider:   cfg.TextProvider,
		Text:           text,
		ImageProvider:  cfg.ImageProvider,
		Images:         images,
		ImageModel:     cfg.ImageModel,
		NegativePrompt: cfg.ImageNegativePrompt,
	}, nil
}

// TextStep returns a text-generation step on the client's model.
func (c *Client) TextStep(opts ...TextOption) *TextStep {
	return NewTextStep(c.Text, "text:"+c.TextProvider, opts...)
}

// ImageStep returns an image-generation step using the client's defaults.
// Options override the defaults.
func (c *Client) ImageStep(opts ...ImageOption) *ImageStep {
	base := []ImageOption{WithModel(c.ImageModel), WithNegativePrompt(c.NegativePrompt)}
	return NewImageStep(c.Images, "image:"+c.ImageProvider, append(base, opts...)...)
}

// Close releases provider clients that hold connections.
func (c *Client) Close() error {
	if closer, ok := c.Images.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// NewTextModel creates the langchaingo model for cfg.TextProvider.
func NewTextModel(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	switch cfg.TextProvider {
	case "openai":
		opts := []openai.Option{openai.WithToken(cfg.OpenAIAPIKey)}
		if cfg.TextModel != "" {
			opts = append(opts, openai.WithModel(cfg.TextModel))
		}
		if cfg.TextAPIEndpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.TextAPIEndpoint))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai model: %w", err)
		}
		return model, nil

	case "googleai":
		opts := []googleai.Option{googleai.WithAPIKey(cfg.GeminiAPIKey)}
		if cfg.TextModel != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.TextModel))
		}
		if cfg.TextAPIEndpoint != "" {
			if hc := httpClientForEndpoint(cfg.TextAPIEndpoint); hc != nil {
				opts = append(opts, googleai.WithHTTPClient(hc))
			}
		}
		model, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize googleai model: %w", err)
		}
		return model, nil

	case "huggingface":
		var opts []huggingface.Option
		if cfg.HuggingFaceAPIKey != "" {
			opts = append(opts, huggingface.WithToken(cfg.HuggingFaceAPIKey))
		}
		if cfg.TextModel != "" {
			opts = append(opts, huggingface.WithModel(cfg.TextModel))
		}
		if cfg.TextAPIEndpoint != "" {
			opts = append(opts, huggingface.WithURL(cfg.TextAPIEndpoint))
		}
		model, err := huggingface.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize huggingface model: %w", err)
		}
		return model, nil
	}
	return nil, fmt.Errorf("text provider %q: %w", cfg.TextProvider, ErrUnknownProvider)
}

// NewImageGenerator creates the image backend for cfg.ImageProvider.
func NewImageGenerator(ctx context.Context, cfg *config.Config) (ImageGenerator, error) {
	switch cfg.ImageProvider {
	case "huggingface":
		return NewHuggingFaceImages(cfg.HuggingFaceAPIKey, cfg.HuggingFaceInferenceURL, nil), nil
	case "gemini":
		return NewGeminiImages(ctx, cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint)
	case "imagen":
		return NewImagenImages(ctx, cfg.GeminiAPIKey, cfg.GeminiAPIEndpoint)
	}
	return nil, fmt.Errorf("image provider %q: %w", cfg.ImageProvider, ErrUnknownProvider)
}

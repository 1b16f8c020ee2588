package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxErrorBodyBytes bounds how much of a failed response body is kept in the error.
const maxErrorBodyBytes = 1024

// HuggingFaceImages calls the Hugging Face text-to-image inference API.
type HuggingFaceImages struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewHuggingFaceImages returns a text-to-image backend. baseURL is the models
// root (e.g. https://router.huggingface.co/hf-inference/models); httpClient
// defaults to http.DefaultClient.
func NewHuggingFaceImages(token, baseURL string, httpClient *http.Client) *HuggingFaceImages {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HuggingFaceImages{
		token:   token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

type hfTextToImageRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters *hfTextToImageParam `json:"parameters,omitempty"`
}

type hfTextToImageParam struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

// GenerateImage posts the prompt to {baseURL}/{model} and returns the image body.
func (h *HuggingFaceImages) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	if req.Model == "" {
		req.Model = "stabilityai/stable-diffusion-2"
	}

	body := hfTextToImageRequest{Inputs: req.Prompt}
	if req.NegativePrompt != "" {
		body.Parameters = &hfTextToImageParam{NegativePrompt: req.NegativePrompt}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+req.Model, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/jpeg")
	if h.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("text-to-image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		log.Warn().
			Int("status", resp.StatusCode).
			Str("model", req.Model).
			Str("body", string(msg)).
			Msg("Hugging Face text-to-image returned an error")
		return nil, fmt.Errorf("text-to-image status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return &Image{Data: data, Model: req.Model, MimeType: mimeType}, nil
}

package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snappy-loop/promptchain/internal/config"
)

func TestEndpointRoundTripper_RewritesBase(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))
	defer srv.Close()

	hc := httpClientForEndpoint(srv.URL + "/gemini/")
	if hc == nil {
		t.Fatal("nil client for valid endpoint")
	}
	resp, err := hc.Get("https://generativelanguage.googleapis.com/v1beta/models?key=abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotPath != "/gemini/v1beta/models" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "key=abc" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestHTTPClientForEndpoint_Invalid(t *testing.T) {
	if hc := httpClientForEndpoint("not a url"); hc != nil {
		t.Error("expected nil client for invalid endpoint")
	}
}

func TestNewClient_UnknownProviders(t *testing.T) {
	ctx := context.Background()
	if _, err := NewTextModel(ctx, &config.Config{TextProvider: "bard"}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("text err = %v", err)
	}
	if _, err := NewImageGenerator(ctx, &config.Config{ImageProvider: "dalle"}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("image err = %v", err)
	}
}

func TestNewImageGenerator_GoogleRequiresKey(t *testing.T) {
	for _, provider := range []string{"gemini", "imagen"} {
		if _, err := NewImageGenerator(context.Background(), &config.Config{ImageProvider: provider}); err == nil {
			t.Errorf("%s: expected error without API key", provider)
		}
	}
}

func TestNewClient_HuggingFaceImages(t *testing.T) {
	cfg := &config.Config{
		TextProvider:            "openai",
		OpenAIAPIKey:            "sk-test",
		ImageProvider:           "huggingface",
		ImageModel:              "stabilityai/stable-diffusion-2",
		ImageNegativePrompt:     "blurry",
		HuggingFaceInferenceURL: "http://localhost:1/models",
	}
	c, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.Images.(*HuggingFaceImages); !ok {
		t.Errorf("images = %T", c.Images)
	}
	if c.Text == nil {
		t.Error("nil text model")
	}
}

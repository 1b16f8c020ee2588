package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/storage"
	"github.com/tmc/langchaingo/llms/fake"
)

type promptImages struct{}

func (promptImages) GenerateImage(_ context.Context, req llm.ImageRequest) (*llm.Image, error) {
	return &llm.Image{Data: []byte(req.Prompt), MimeType: "image/jpeg"}, nil
}

// stubProviders swaps the provider and sink constructors for the duration of a test.
func stubProviders(t *testing.T, responses ...string) string {
	t.Helper()
	base := t.TempDir()
	origClient, origSink := newLLMClient, newSink
	newLLMClient = func(context.Context, *config.Config) (*llm.Client, error) {
		return &llm.Client{
			TextProvider:  "fake",
			Text:          fake.NewFakeLLM(responses),
			ImageProvider: "prompt",
			Images:        promptImages{},
		}, nil
	}
	newSink = func(*config.Config) (storage.Sink, error) {
		return storage.NewFileSink(base), nil
	}
	t.Cleanup(func() {
		newLLMClient, newSink = origClient, origSink
		runFlags.set, runFlags.out = nil, ""
		imageFlags.negative, imageFlags.model, imageFlags.out = "", "", ""
	})
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", want: map[string]string{}},
		{name: "pairs", pairs: []string{"dish=beef wellington", "x=a=b"}, want: map[string]string{"dish": "beef wellington", "x": "a=b"}},
		{name: "last wins", pairs: []string{"a=1", "a=2"}, want: map[string]string{"a": "2"}},
		{name: "no equals", pairs: []string{"dish"}, wantErr: true},
		{name: "empty key", pairs: []string{"=x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSet(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v", got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	if got := outputName("a/b.jpg", "served-dish.jpg", "output", now); got != "a/b.jpg" {
		t.Errorf("explicit = %q", got)
	}
	if got := outputName("", "served-dish.jpg", "output", now); got != "output/served-dish.jpg" {
		t.Errorf("suggested = %q", got)
	}
	if got := outputName("", "", "output", now); got != "output/1700000000000.jpg" {
		t.Errorf("default = %q", got)
	}
}

func TestRecipesCommand(t *testing.T) {
	out, err := execute(t, "recipes")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"check", "company-name", "dish-image", "dish-of-the-day", "garnish", "translate-joke"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %q:\n%s", name, out)
		}
	}
	if !strings.Contains(out, `dish="pizza"`) {
		t.Errorf("default not shown:\n%s", out)
	}
}

func TestRunCommand_SavesImage(t *testing.T) {
	base := stubProviders(t, " with parsley ")

	out, err := execute(t, "run", "garnish", "--set", "dish=beef wellington")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(base, "output", "served-dish.jpg")
	if strings.TrimSpace(out) != want {
		t.Errorf("output = %q, want %q", out, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "beef wellington, with parsley" {
		t.Errorf("image = %q", data)
	}
}

func TestRunCommand_Errors(t *testing.T) {
	stubProviders(t, "x")

	if _, err := execute(t, "run", "soup"); err == nil || !strings.Contains(err.Error(), "unknown recipe") {
		t.Errorf("unknown recipe err = %v", err)
	}
	if _, err := execute(t, "run", "company-name", "--set", "product"); err == nil {
		t.Error("malformed --set accepted")
	}
}

func TestImageCommand(t *testing.T) {
	base := stubProviders(t)

	out, err := execute(t, "image", "a", "slice", "of", "pizza", "--out", "pics/p.jpg")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(base, "pics", "p.jpg")
	if strings.TrimSpace(out) != want {
		t.Errorf("output = %q", out)
	}
	data, _ := os.ReadFile(want)
	if string(data) != "a slice of pizza" {
		t.Errorf("image = %q", data)
	}
}

func TestHashKeyCommand(t *testing.T) {
	out, err := execute(t, "hash-key", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "$2a$") {
		t.Errorf("hash = %q", out)
	}
}

package llm

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type recordingGenerator struct {
	img  *Image
	err  error
	reqs []ImageRequest
}

func (g *recordingGenerator) GenerateImage(_ context.Context, req ImageRequest) (*Image, error) {
	g.reqs = append(g.reqs, req)
	return g.img, g.err
}

func TestImageStep_AppliesDefaults(t *testing.T) {
	gen := &recordingGenerator{img: &Image{Data: []byte{0xFF, 0xD8}, MimeType: "image/jpeg"}}
	c := &Client{
		ImageProvider:  "stub",
		Images:         gen,
		ImageModel:     "stabilityai/stable-diffusion-2",
		NegativePrompt: "blurry",
	}

	img, err := c.ImageStep().Invoke(context.Background(), "pizza")
	if err != nil {
		t.Fatal(err)
	}
	if img.Size() != 2 {
		t.Errorf("size = %d", img.Size())
	}
	want := ImageRequest{Prompt: "pizza", NegativePrompt: "blurry", Model: "stabilityai/stable-diffusion-2"}
	if len(gen.reqs) != 1 || gen.reqs[0] != want {
		t.Errorf("requests = %+v, want %+v", gen.reqs, want)
	}

	if _, err := c.ImageStep(WithNegativePrompt("text, watermark")).Invoke(context.Background(), "pizza"); err != nil {
		t.Fatal(err)
	}
	if got := gen.reqs[1].NegativePrompt; got != "text, watermark" {
		t.Errorf("override negative prompt = %q", got)
	}
}

func TestImageStep_Errors(t *testing.T) {
	quota := errors.New("429 rate limited")
	tests := []struct {
		name string
		gen  ImageGenerator
		want error
	}{
		{"service failure", &recordingGenerator{err: quota}, quota},
		{"nil image", &recordingGenerator{}, ErrEmptyImage},
		{"empty payload", &recordingGenerator{img: &Image{}}, ErrEmptyImage},
		{"no backend", nil, ErrUnknownProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImageStep(tt.gen, "image:stub").Invoke(context.Background(), "x")
			if img != nil {
				t.Errorf("image = %+v, want nil", img)
			}
			var terr *TransportError
			if !errors.As(err, &terr) || terr.Capability != "image:stub" {
				t.Fatalf("err = %v, want *TransportError for image:stub", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want wrapping %v", err, tt.want)
			}
		})
	}
}

func TestImageData(t *testing.T) {
	data, err := ImageData().Invoke(context.Background(), &Image{Data: []byte("jpeg")})
	if err != nil || !bytes.Equal(data, []byte("jpeg")) {
		t.Errorf("got %q, %v", data, err)
	}
}

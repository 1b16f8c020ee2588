package recipes

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/storage"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel answers by prompt prefix and records what it was asked.
type scriptedModel struct {
	mu      sync.Mutex
	answers map[string]string
	fail    map[string]error
	prompts []string
	temps   []float64
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	prompt := messages[0].Parts[0].(llms.TextContent).Text

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.temps = append(m.temps, opts.Temperature)

	for prefix, err := range m.fail {
		if strings.HasPrefix(prompt, prefix) {
			return nil, err
		}
	}
	for prefix, answer := range m.answers {
		if strings.HasPrefix(prompt, prefix) {
			return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "default answer"}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// lengthImages returns an image whose size equals the prompt length.
type lengthImages struct {
	mu       sync.Mutex
	requests []llm.ImageRequest
}

func (g *lengthImages) GenerateImage(_ context.Context, req llm.ImageRequest) (*llm.Image, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return &llm.Image{Data: bytes.Repeat([]byte{0xAB}, len(req.Prompt)), MimeType: "image/jpeg", Model: req.Model}, nil
}

func newTestClient(model llms.Model, images llm.ImageGenerator) *llm.Client {
	return &llm.Client{
		TextProvider:   "scripted",
		Text:           model,
		ImageProvider:  "length",
		Images:         images,
		ImageModel:     "stabilityai/stable-diffusion-2",
		NegativePrompt: "blurry",
	}
}

func TestTranslateJoke_EndToEnd(t *testing.T) {
	model := &scriptedModel{answers: map[string]string{"Translate this joke": "  translated text\n"}}
	images := &lengthImages{}
	reg := Default(newTestClient(model, images), 3)

	out, err := reg.Run(context.Background(), "translate-joke", map[string]string{
		"joke":         `Šta kaže Brus Vilis kad ode u prodavnicu kompjuterske opreme? "Daj hard."`,
		"languageFrom": "Serbian",
		"languageTo":   "Chinese",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Text != "translated text" {
		t.Errorf("text = %q", out.Text)
	}

	wantPrompt := `Translate this joke from Serbian into Chinese: Šta kaže Brus Vilis kad ode u prodavnicu kompjuterske opreme? "Daj hard.". Only respond with the result.`
	if len(model.prompts) != 1 || model.prompts[0] != wantPrompt {
		t.Errorf("prompts = %q", model.prompts)
	}
	if model.temps[0] != 1 {
		t.Errorf("temperature = %v", model.temps[0])
	}
	if len(images.requests) != 1 || images.requests[0].Prompt != "translated text" || images.requests[0].NegativePrompt != "blurry" {
		t.Errorf("image requests = %+v", images.requests)
	}

	base := t.TempDir()
	save := storage.SaveStep(storage.NewFileSink(base), func() string { return "output/joke.jpg" })
	name, err := save.Invoke(context.Background(), out.Image.Data)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(base, name))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len("translated text")) {
		t.Errorf("file size = %d, want %d", info.Size(), len("translated text"))
	}
}

func TestTranslateJoke_TextFailureStopsImage(t *testing.T) {
	boom := errors.New("rate limited")
	model := &scriptedModel{fail: map[string]error{"Translate": boom}}
	images := &lengthImages{}
	reg := Default(newTestClient(model, images), 3)

	_, err := reg.Run(context.Background(), "translate-joke", map[string]string{
		"joke": "j", "languageFrom": "a", "languageTo": "b",
	})
	var te *llm.TransportError
	if !errors.As(err, &te) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want transport error wrapping %v", err, boom)
	}
	if len(images.requests) != 0 {
		t.Errorf("image generated after text failure")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		fail        map[string]error
		wantText    string
		wantSkipped bool
		wantPrompts int
	}{
		{
			name:        "hello succeeds",
			wantText:    "Moo Industries",
			wantPrompts: 2,
		},
		{
			name:        "hello fails",
			fail:        map[string]error{"Say hello": errors.New("no key")},
			wantSkipped: true,
			wantPrompts: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{
				answers: map[string]string{"Say hello": "Hello!", "What is a good name": "Moo Industries"},
				fail:    tt.fail,
			}
			reg := Default(newTestClient(model, &lengthImages{}), 3)

			out, err := reg.Run(context.Background(), "check", map[string]string{"product": "flying cows"})
			if err != nil {
				t.Fatal(err)
			}
			if out.Text != tt.wantText {
				t.Errorf("text = %q", out.Text)
			}
			if (out.Skipped != "") != tt.wantSkipped {
				t.Errorf("skipped = %q", out.Skipped)
			}
			if len(model.prompts) != tt.wantPrompts {
				t.Errorf("prompts = %q", model.prompts)
			}
		})
	}
}

func TestCompanyName(t *testing.T) {
	model := &scriptedModel{answers: map[string]string{"What is a good name": "Udder Flight"}}
	reg := Default(newTestClient(model, &lengthImages{}), 3)

	out, err := reg.Run(context.Background(), "company-name", map[string]string{"product": "flying cows"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "Udder Flight" {
		t.Errorf("text = %q", out.Text)
	}
	if model.prompts[0] != "What is a good name for a company that makes flying cows? Be creative about it." {
		t.Errorf("prompt = %q", model.prompts[0])
	}
}

func TestDishImage_DefaultDish(t *testing.T) {
	images := &lengthImages{}
	reg := Default(newTestClient(&scriptedModel{}, images), 3)

	out, err := reg.Run(context.Background(), "dish-image", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Image == nil || out.Image.Size() != int64(len("pizza")) {
		t.Fatalf("image = %+v", out.Image)
	}
	if images.requests[0].Prompt != "pizza" || images.requests[0].Model != "stabilityai/stable-diffusion-2" {
		t.Errorf("request = %+v", images.requests[0])
	}
}

func TestGarnish_FansOut(t *testing.T) {
	model := &scriptedModel{answers: map[string]string{"How is this dish": " with roasted vegetables \n"}}
	images := &lengthImages{}
	reg := Default(newTestClient(model, images), 3)

	out, err := reg.Run(context.Background(), "garnish", map[string]string{"dish": "beef wellington"})
	if err != nil {
		t.Fatal(err)
	}
	want := "beef wellington, with roasted vegetables"
	if images.requests[0].Prompt != want {
		t.Errorf("image prompt = %q, want %q", images.requests[0].Prompt, want)
	}
	if out.Image.Size() != int64(len(want)) {
		t.Errorf("image size = %d", out.Image.Size())
	}
	if model.temps[0] != 0.9 {
		t.Errorf("temperature = %v", model.temps[0])
	}
}

func TestDishOfTheDay(t *testing.T) {
	model := &sequenceModel{responses: []string{
		"Action: dish-generator\nAction Input: none",
		"Coq au vin",
		"Final Answer: Coq au vin",
	}}
	reg := Default(newTestClient(model, &lengthImages{}), 3)

	out, err := reg.Run(context.Background(), "dish-of-the-day", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "Coq au vin" {
		t.Errorf("text = %q", out.Text)
	}
}

// sequenceModel returns its responses in order.
type sequenceModel struct {
	mu        sync.Mutex
	responses []string
	next      int
}

func (m *sequenceModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next >= len(m.responses) {
		return nil, errors.New("no more responses")
	}
	r := m.responses[m.next]
	m.next++
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: r}}}, nil
}

func (m *sequenceModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

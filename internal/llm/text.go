package llm

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

// TextStep sends a prompt to a text model and returns its completion.
type TextStep struct {
	model      llms.Model
	capability string
	callOpts   []llms.CallOption
}

// TextOption configures a TextStep.
type TextOption func(*TextStep)

// WithTemperature sets the sampling temperature (typically 0..2).
func WithTemperature(t float64) TextOption {
	return func(s *TextStep) { s.callOpts = append(s.callOpts, llms.WithTemperature(t)) }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) TextOption {
	return func(s *TextStep) { s.callOpts = append(s.callOpts, llms.WithMaxTokens(n)) }
}

// NewTextStep returns a step over model. capability names the service in errors and logs.
func NewTextStep(model llms.Model, capability string, opts ...TextOption) *TextStep {
	s := &TextStep{model: model, capability: capability}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke generates a completion for prompt. Failures, including an empty
// completion, come back as *TransportError.
func (s *TextStep) Invoke(ctx context.Context, prompt string) (string, error) {
	log.Debug().
		Str("capability", s.capability).
		Str("prompt", preview(prompt, 80)).
		Msg("Generating text")

	if s.model == nil {
		return "", &TransportError{Capability: s.capability, Err: ErrUnknownProvider}
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt, s.callOpts...)
	if err != nil {
		return "", &TransportError{Capability: s.capability, Err: err}
	}

	logResponse(s.capability, response)

	if strings.TrimSpace(response) == "" {
		return "", &TransportError{Capability: s.capability, Err: ErrEmptyCompletion}
	}
	return response, nil
}

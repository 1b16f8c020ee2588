package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCompletion is returned when a text model answers with nothing but whitespace.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrEmptyImage is returned when an image service responds without image bytes.
	ErrEmptyImage = errors.New("no image data in response")
	// ErrUnknownProvider is returned for a provider name that has no implementation.
	ErrUnknownProvider = errors.New("unknown provider")
)

// TransportError wraps a failed call to an external generation service.
type TransportError struct {
	Capability string // e.g. "text:openai", "image:huggingface"
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

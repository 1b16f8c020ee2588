package pipeline

import "fmt"

// CompositionError reports steps whose shapes do not fit together.
type CompositionError struct {
	Stage  string
	Reason string
}

func (e *CompositionError) Error() string {
	if e.Stage == "" {
		return "composition: " + e.Reason
	}
	return fmt.Sprintf("composition %s: %s", e.Stage, e.Reason)
}

func compositionErrorf(stage, format string, args ...any) error {
	return &CompositionError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

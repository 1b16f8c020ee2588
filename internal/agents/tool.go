package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/snappy-loop/promptchain/internal/pipeline"
	"github.com/tmc/langchaingo/tools"
)

// StepTool exposes a text step to the agent as a named tool.
type StepTool struct {
	name        string
	description string
	step        pipeline.Step[string, string]
}

var _ tools.Tool = (*StepTool)(nil)

// NewStepTool wraps step. The description is what the model reads when
// deciding which tool to call.
func NewStepTool(name, description string, step pipeline.Step[string, string]) (*StepTool, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return nil, errors.New("tool name is empty")
	case strings.TrimSpace(description) == "":
		return nil, fmt.Errorf("tool %q: description is empty", name)
	case step == nil:
		return nil, fmt.Errorf("tool %q: step is nil", name)
	}
	return &StepTool{name: name, description: description, step: step}, nil
}

func (t *StepTool) Name() string        { return t.name }
func (t *StepTool) Description() string { return t.description }

// Call runs the wrapped step with the model-chosen input.
func (t *StepTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.step.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", t.name, err)
	}
	return out, nil
}

// Lookup finds a tool by name, ignoring case the way the agent loop does.
func Lookup(toolbox []tools.Tool, name string) (tools.Tool, bool) {
	for _, t := range toolbox {
		if strings.EqualFold(t.Name(), name) {
			return t, true
		}
	}
	return nil, false
}

func checkToolNames(toolbox []tools.Tool) error {
	seen := make(map[string]struct{}, len(toolbox))
	for i, t := range toolbox {
		if t == nil {
			return fmt.Errorf("tool %d is nil", i)
		}
		key := strings.ToUpper(t.Name())
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate tool name %q", t.Name())
		}
		seen[key] = struct{}{}
	}
	return nil
}

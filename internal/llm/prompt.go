package llm

import (
	"context"
	"fmt"
	"regexp"

	"github.com/snappy-loop/promptchain/internal/pipeline"
	"github.com/tmc/langchaingo/prompts"
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// PromptStep renders an f-string template ("... {dish} ...") from a record.
type PromptStep struct {
	template prompts.PromptTemplate
}

// NewPromptStep parses the placeholders of template. A template without
// placeholders is rejected as it can only ever render one prompt.
func NewPromptStep(template string) (*PromptStep, error) {
	var vars []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	if len(vars) == 0 {
		return nil, &pipeline.CompositionError{Stage: "prompt", Reason: "template has no placeholders"}
	}
	return &PromptStep{template: prompts.PromptTemplate{
		Template:       template,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatFString,
	}}, nil
}

// MustPromptStep is like NewPromptStep but panics on an invalid template.
func MustPromptStep(template string) *PromptStep {
	p, err := NewPromptStep(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Variables returns the placeholder names in order of first appearance.
func (p *PromptStep) Variables() []string {
	return p.template.GetInputVariables()
}

// Invoke renders the template. Every placeholder must be present in values.
func (p *PromptStep) Invoke(_ context.Context, values pipeline.Record) (string, error) {
	for _, v := range p.template.InputVariables {
		if _, ok := values[v]; !ok {
			return "", &pipeline.CompositionError{Stage: "prompt", Reason: fmt.Sprintf("missing variable %q", v)}
		}
	}
	out, err := p.template.Format(values)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return out, nil
}

package agents

import (
	"context"

	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/pipeline"
	"github.com/tmc/langchaingo/tools"
)

const (
	DishGeneratorName        = "dish-generator"
	Base64ImageGeneratorName = "base64-image-generator"

	dishOfTheDayPrompt = `Come up with a random "dish of the day". Only respond with the result.`
)

// DishGenerator ignores its input and asks the text model for a dish of the day.
func DishGenerator(text *llm.TextStep) *StepTool {
	step := pipeline.Then(
		pipeline.Const[string](dishOfTheDayPrompt),
		pipeline.Then[string, string, string](text, pipeline.TrimString()),
	)
	t, _ := NewStepTool(DishGeneratorName,
		"generates a random dish of the day; doesn't accept any input",
		step)
	return t
}

// Base64ImageGenerator renders its input as an image and returns the bytes
// base64 encoded.
func Base64ImageGenerator(images *llm.ImageStep) *StepTool {
	step := pipeline.Then(
		pipeline.Then[string, *llm.Image, []byte](images, llm.ImageData()),
		pipeline.Base64(),
	)
	t, _ := NewStepTool(Base64ImageGeneratorName,
		"accepts a prompt as an input and returns a base64 encoded image",
		step)
	return t
}

// DefaultTools is the toolbox of the dish-of-the-day agent.
func DefaultTools(client *llm.Client) []tools.Tool {
	return []tools.Tool{
		DishGenerator(client.TextStep(llm.WithTemperature(1))),
		Base64ImageGenerator(client.ImageStep()),
	}
}

// NewDishOfTheDay builds the agent over DefaultTools.
func NewDishOfTheDay(client *llm.Client, maxIterations int) (*Agent, error) {
	return New(client.Text, DefaultTools(client),
		WithMaxIterations(maxIterations),
		WithTemperature(0),
	)
}

// CallTool runs a tool from toolbox by name.
func CallTool(ctx context.Context, toolbox []tools.Tool, name, input string) (string, error) {
	t, ok := Lookup(toolbox, name)
	if !ok {
		return "", &UnknownToolError{Name: name}
	}
	return t.Call(ctx, input)
}

// UnknownToolError reports a tool name missing from the toolbox.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "unknown tool: " + e.Name
}

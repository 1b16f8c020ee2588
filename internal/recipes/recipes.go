package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/agents"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/pipeline"
)

const (
	helloPrompt       = "Say hello!"
	companyNamePrompt = "What is a good name for a company that makes {product}? Be creative about it."
	garnishPrompt     = "How is this dish commonly garnished: {dish}? Only respond with the result."
	translatePrompt   = "Translate this joke from {languageFrom} into {languageTo}: {joke}. Only respond with the result."

	defaultAgentInput = `Come up with a dish of the day and show me an image of it.`
)

// Default returns the registry of built-in recipes over client.
func Default(client *llm.Client, agentMaxIterations int) *Registry {
	r, err := NewRegistry(
		Check(client),
		CompanyName(client),
		DishImage(client),
		Garnish(client),
		TranslateJoke(client),
		DishOfTheDay(client, agentMaxIterations),
	)
	if err != nil {
		panic(err)
	}
	return r
}

func record(in map[string]string) pipeline.Record {
	r := make(pipeline.Record, len(in))
	for k, v := range in {
		r[k] = v
	}
	return r
}

func promptThenText(template string, text *llm.TextStep) pipeline.Step[pipeline.Record, string] {
	var prompt pipeline.Step[pipeline.Record, string] = llm.MustPromptStep(template)
	return pipeline.Then(prompt, pipeline.Then[string, string, string](text, pipeline.TrimString()))
}

// Check makes a connectivity call first and only asks for a company name
// when that call succeeds.
func Check(client *llm.Client) *Recipe {
	hello := pipeline.Traced[string, string]("hello", client.TextStep())
	companyName := pipeline.Traced("company-name",
		promptThenText("What is a good name for a company that makes {product}?", client.TextStep()))

	return &Recipe{
		Name:        "check",
		Description: "verify the text provider answers, then name a company",
		Params: []Param{
			{Name: "product", Description: "what the company makes", Required: true},
		},
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			greeting, err := hello.Invoke(ctx, helloPrompt)
			if err != nil {
				log.Error().Err(err).Msg("Hello check failed, skipping company name")
				return &Output{Skipped: fmt.Sprintf("hello check failed: %v", err)}, nil
			}
			log.Info().Str("response", strings.TrimSpace(greeting)).Msg("Hello check passed")

			name, err := companyName.Invoke(ctx, record(in))
			if err != nil {
				return nil, err
			}
			return &Output{Text: name}, nil
		},
	}
}

// CompanyName asks for a creative company name.
func CompanyName(client *llm.Client) *Recipe {
	chain := pipeline.Traced("company-name",
		promptThenText(companyNamePrompt, client.TextStep(llm.WithTemperature(1))))

	return &Recipe{
		Name:        "company-name",
		Description: "suggest a creative company name for a product",
		Params: []Param{
			{Name: "product", Description: "what the company makes", Required: true},
		},
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			name, err := chain.Invoke(ctx, record(in))
			if err != nil {
				return nil, err
			}
			return &Output{Text: name}, nil
		},
	}
}

// DishImage renders a dish.
func DishImage(client *llm.Client) *Recipe {
	image := pipeline.Traced[string, *llm.Image]("dish-image", client.ImageStep())

	return &Recipe{
		Name:        "dish-image",
		Description: "generate an image of a dish",
		Params: []Param{
			{Name: "dish", Description: "dish to draw", Default: "pizza"},
		},
		OutputName: "basic-dish.jpg",
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			img, err := image.Invoke(ctx, in["dish"])
			if err != nil {
				return nil, err
			}
			return &Output{Image: img}, nil
		},
	}
}

// Garnish asks how a dish is served while keeping the dish name, then
// renders both together.
func Garnish(client *llm.Client) *Recipe {
	serving := pipeline.MustFanOut(
		pipeline.Pass("dish", func(r pipeline.Record) string {
			dish, _ := r["dish"].(string)
			return dish
		}),
		pipeline.Field("serving",
			promptThenText(garnishPrompt, client.TextStep(llm.WithTemperature(0.9)))),
	)
	imagePrompt := pipeline.MapErr(func(r pipeline.Record) (string, error) {
		dish, err := pipeline.Get[string](r, "dish")
		if err != nil {
			return "", err
		}
		serving, err := pipeline.Get[string](r, "serving")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(dish) + ", " + strings.TrimSpace(serving), nil
	})
	var image pipeline.Step[string, *llm.Image] = client.ImageStep()

	chain := pipeline.Traced("garnish",
		pipeline.Then(pipeline.Then[pipeline.Record, pipeline.Record, string](serving, imagePrompt), image))

	return &Recipe{
		Name:        "garnish",
		Description: "generate an image of a dish served with its usual garnish",
		Params: []Param{
			{Name: "dish", Description: "dish to serve", Required: true},
		},
		OutputName: "served-dish.jpg",
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			img, err := chain.Invoke(ctx, record(in))
			if err != nil {
				return nil, err
			}
			return &Output{Image: img}, nil
		},
	}
}

// TranslateJoke translates a joke and illustrates the translation.
func TranslateJoke(client *llm.Client) *Recipe {
	translate := promptThenText(translatePrompt, client.TextStep(llm.WithTemperature(1)))
	illustrate := pipeline.MustFanOut(
		pipeline.Pass("text", func(s string) string { return s }),
		pipeline.Field[string, *llm.Image]("image", client.ImageStep()),
	)
	chain := pipeline.Traced("translate-joke",
		pipeline.Then[pipeline.Record, string, pipeline.Record](translate, illustrate))

	return &Recipe{
		Name:        "translate-joke",
		Description: "translate a joke and generate an image from the translation",
		Params: []Param{
			{Name: "joke", Description: "joke to translate", Required: true},
			{Name: "languageFrom", Description: "source language", Required: true},
			{Name: "languageTo", Description: "target language", Required: true},
		},
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			rec, err := chain.Invoke(ctx, record(in))
			if err != nil {
				return nil, err
			}
			text, err := pipeline.Get[string](rec, "text")
			if err != nil {
				return nil, err
			}
			img, err := pipeline.Get[*llm.Image](rec, "image")
			if err != nil {
				return nil, err
			}
			return &Output{Text: text, Image: img}, nil
		},
	}
}

// DishOfTheDay lets the agent pick a dish and draw it with the default toolbox.
func DishOfTheDay(client *llm.Client, maxIterations int) *Recipe {
	return &Recipe{
		Name:        "dish-of-the-day",
		Description: "let a tool-using agent invent a dish of the day",
		Params: []Param{
			{Name: "input", Description: "question for the agent", Default: defaultAgentInput},
		},
		run: func(ctx context.Context, in map[string]string) (*Output, error) {
			agent, err := agents.NewDishOfTheDay(client, maxIterations)
			if err != nil {
				return nil, err
			}
			answer, err := agent.Run(ctx, in["input"])
			if err != nil {
				return nil, err
			}
			return &Output{Text: answer}, nil
		},
	}
}

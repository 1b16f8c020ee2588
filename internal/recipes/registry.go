// Package recipes holds named, ready-made pipelines built from the text,
// image and agent steps.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/llm"
)

var (
	ErrUnknownRecipe = errors.New("unknown recipe")
	ErrMissingInput  = errors.New("missing required input")
	ErrUnknownInput  = errors.New("unknown input")
)

// Output is what a recipe produces. Either field may be empty.
type Output struct {
	Text  string
	Image *llm.Image
	// Skipped is set when the recipe stopped early on purpose.
	Skipped string
}

// Param describes one named input of a recipe.
type Param struct {
	Name        string
	Description string
	Default     string
	Required    bool
}

// Recipe is a named pipeline over string inputs.
type Recipe struct {
	Name        string
	Description string
	Params      []Param
	// OutputName is the suggested file name for the image, if any.
	OutputName string

	run func(ctx context.Context, in map[string]string) (*Output, error)
}

// Resolve applies defaults and checks that every required input is present
// and no unknown input was given.
func (rc *Recipe) Resolve(inputs map[string]string) (map[string]string, error) {
	known := make(map[string]struct{}, len(rc.Params))
	resolved := make(map[string]string, len(rc.Params))
	for _, p := range rc.Params {
		known[p.Name] = struct{}{}
		v := strings.TrimSpace(inputs[p.Name])
		if v == "" {
			v = p.Default
		}
		if v == "" && p.Required {
			return nil, fmt.Errorf("recipe %s: %w: %s", rc.Name, ErrMissingInput, p.Name)
		}
		resolved[p.Name] = v
	}
	for k := range inputs {
		if _, ok := known[k]; !ok {
			return nil, fmt.Errorf("recipe %s: %w: %s", rc.Name, ErrUnknownInput, k)
		}
	}
	return resolved, nil
}

// Run resolves inputs and executes the recipe.
func (rc *Recipe) Run(ctx context.Context, inputs map[string]string) (*Output, error) {
	resolved, err := rc.Resolve(inputs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log.Info().Str("recipe", rc.Name).Interface("inputs", resolved).Msg("Recipe started")

	out, err := rc.run(ctx, resolved)
	if err != nil {
		log.Error().Err(err).Str("recipe", rc.Name).Dur("elapsed", time.Since(start)).Msg("Recipe failed")
		return nil, err
	}

	ev := log.Info().Str("recipe", rc.Name).Dur("elapsed", time.Since(start))
	if out.Image != nil {
		ev = ev.Int64("image_bytes", out.Image.Size())
	}
	if out.Skipped != "" {
		ev = ev.Str("skipped", out.Skipped)
	}
	ev.Msg("Recipe finished")
	return out, nil
}

// Registry manages available recipes
type Registry struct {
	recipes map[string]*Recipe
}

// NewRegistry creates a registry with the given recipes. Names must be unique.
func NewRegistry(recipes ...*Recipe) (*Registry, error) {
	r := &Registry{recipes: make(map[string]*Recipe, len(recipes))}
	for _, rc := range recipes {
		if rc == nil || rc.Name == "" || rc.run == nil {
			return nil, errors.New("recipe must have a name and a pipeline")
		}
		if _, dup := r.recipes[rc.Name]; dup {
			return nil, fmt.Errorf("duplicate recipe %q", rc.Name)
		}
		r.recipes[rc.Name] = rc
	}
	return r, nil
}

// Get returns the recipe registered under name.
func (r *Registry) Get(name string) (*Recipe, error) {
	rc, ok := r.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipe, name)
	}
	return rc, nil
}

// List returns all recipes sorted by name.
func (r *Registry) List() []*Recipe {
	out := make([]*Recipe, 0, len(r.recipes))
	for _, rc := range r.recipes {
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run looks up name and runs it with inputs.
func (r *Registry) Run(ctx context.Context, name string, inputs map[string]string) (*Output, error) {
	rc, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return rc.Run(ctx, inputs)
}

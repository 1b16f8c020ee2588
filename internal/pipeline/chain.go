package pipeline

import (
	"context"
	"fmt"
	"reflect"
)

// Runnable is a type-erased step that still knows its declared input and output types.
type Runnable interface {
	Invoke(ctx context.Context, in any) (any, error)
	InputType() reflect.Type
	OutputType() reflect.Type
}

type erased[I, O any] struct {
	step Step[I, O]
}

// Erase hides the type parameters of step so it can join a dynamic Chain.
func Erase[I, O any](step Step[I, O]) Runnable {
	return erased[I, O]{step: step}
}

func (e erased[I, O]) Invoke(ctx context.Context, in any) (any, error) {
	v, ok := in.(I)
	if !ok && in != nil {
		var want I
		return nil, compositionErrorf("invoke", "input is %T, want %T", in, want)
	}
	return e.step.Invoke(ctx, v)
}

func (e erased[I, O]) InputType() reflect.Type  { return reflect.TypeFor[I]() }
func (e erased[I, O]) OutputType() reflect.Type { return reflect.TypeFor[O]() }

// fits reports whether a value of type from survives the type assertion to
// type to: the types are identical, or to is an interface from implements.
func fits(from, to reflect.Type) bool {
	return from == to || (to.Kind() == reflect.Interface && from.Implements(to))
}

type chain struct {
	steps []Runnable
}

// Chain composes runnables in order. Every output type must fit the next
// step's input type (see fits); mismatches are reported before anything runs.
func Chain(steps ...Runnable) (Runnable, error) {
	if len(steps) == 0 {
		return nil, compositionErrorf("chain", "no steps")
	}
	for i := 1; i < len(steps); i++ {
		out, in := steps[i-1].OutputType(), steps[i].InputType()
		if !fits(out, in) {
			return nil, compositionErrorf(fmt.Sprintf("chain[%d->%d]", i-1, i), "output %s does not fit input %s", out, in)
		}
	}
	return &chain{steps: append([]Runnable(nil), steps...)}, nil
}

func (c *chain) Invoke(ctx context.Context, in any) (any, error) {
	cur := in
	for _, s := range c.steps {
		out, err := s.Invoke(ctx, cur)
		if err != nil {
			return nil, err
		}
		cur = out
	}
	return cur, nil
}

func (c *chain) InputType() reflect.Type  { return c.steps[0].InputType() }
func (c *chain) OutputType() reflect.Type { return c.steps[len(c.steps)-1].OutputType() }

// Typed recovers a Step from a Runnable, checking the declared types up front.
func Typed[I, O any](r Runnable) (Step[I, O], error) {
	if want := reflect.TypeFor[I](); !fits(want, r.InputType()) {
		return nil, compositionErrorf("typed", "input %s does not fit %s", want, r.InputType())
	}
	if want := reflect.TypeFor[O](); !fits(r.OutputType(), want) {
		return nil, compositionErrorf("typed", "output %s does not fit %s", r.OutputType(), want)
	}
	return StepFunc[I, O](func(ctx context.Context, in I) (O, error) {
		var zero O
		out, err := r.Invoke(ctx, in)
		if err != nil {
			return zero, err
		}
		if out == nil {
			return zero, nil
		}
		v, ok := out.(O)
		if !ok {
			return zero, compositionErrorf("typed", "output is %T, want %T", out, zero)
		}
		return v, nil
	}), nil
}

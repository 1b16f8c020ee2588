// Package pipeline composes generation steps into sequential and fan-out chains.
package pipeline

import (
	"context"
	"strings"
)

// Step turns an input into an output, usually by calling an external model.
type Step[I, O any] interface {
	Invoke(ctx context.Context, in I) (O, error)
}

// StepFunc adapts an ordinary function to Step.
type StepFunc[I, O any] func(ctx context.Context, in I) (O, error)

// Invoke calls f.
func (f StepFunc[I, O]) Invoke(ctx context.Context, in I) (O, error) {
	return f(ctx, in)
}

type then[A, B, C any] struct {
	first Step[A, B]
	next  Step[B, C]
}

// Then returns a step that feeds the output of first into next.
// next is never invoked when first fails.
func Then[A, B, C any](first Step[A, B], next Step[B, C]) Step[A, C] {
	return &then[A, B, C]{first: first, next: next}
}

func (t *then[A, B, C]) Invoke(ctx context.Context, in A) (C, error) {
	var zero C
	mid, err := t.first.Invoke(ctx, in)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return t.next.Invoke(ctx, mid)
}

// Sequence chains steps of the same type in order. An empty sequence is the identity.
func Sequence[T any](steps ...Step[T, T]) Step[T, T] {
	return StepFunc[T, T](func(ctx context.Context, in T) (T, error) {
		cur := in
		for _, s := range steps {
			out, err := s.Invoke(ctx, cur)
			if err != nil {
				var zero T
				return zero, err
			}
			cur = out
		}
		return cur, nil
	})
}

// Map lifts a synchronous transformation into a step.
func Map[I, O any](fn func(I) O) Step[I, O] {
	return StepFunc[I, O](func(_ context.Context, in I) (O, error) {
		return fn(in), nil
	})
}

// MapErr lifts a synchronous, fallible transformation into a step.
func MapErr[I, O any](fn func(I) (O, error)) Step[I, O] {
	return StepFunc[I, O](func(_ context.Context, in I) (O, error) {
		return fn(in)
	})
}

// Const ignores its input and always yields v.
func Const[I, O any](v O) Step[I, O] {
	return Map(func(I) O { return v })
}

// TrimString is the string output parser: it strips surrounding whitespace.
func TrimString() Step[string, string] {
	return Map(strings.TrimSpace)
}

package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Record holds the merged results of a fan-out, keyed by branch name.
type Record map[string]any

// Get returns the field name of r as T.
func Get[T any](r Record, name string) (T, error) {
	var zero T
	v, ok := r[name]
	if !ok {
		return zero, compositionErrorf("record", "missing field %q", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, compositionErrorf("record", "field %q is %T, want %T", name, v, zero)
	}
	return t, nil
}

// Branch is one named computation of a fan-out.
type Branch[I any] struct {
	Name string
	run  func(ctx context.Context, in I) (any, error)
}

// Field runs step against the fan-out input and stores its output under name.
func Field[I, O any](name string, step Step[I, O]) Branch[I] {
	return Branch[I]{
		Name: name,
		run: func(ctx context.Context, in I) (any, error) {
			return step.Invoke(ctx, in)
		},
	}
}

// Pass stores an accessor's view of the fan-out input under name.
func Pass[I, O any](name string, get func(I) O) Branch[I] {
	return Branch[I]{
		Name: name,
		run: func(_ context.Context, in I) (any, error) {
			return get(in), nil
		},
	}
}

// FanOutStep runs its branches concurrently and merges them into a Record.
type FanOutStep[I any] struct {
	branches []Branch[I]
}

// FanOut builds a fan-out over branches. Branch names must be unique and non-empty.
func FanOut[I any](branches ...Branch[I]) (*FanOutStep[I], error) {
	if len(branches) == 0 {
		return nil, compositionErrorf("fan-out", "no branches")
	}
	seen := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		if b.Name == "" {
			return nil, compositionErrorf("fan-out", "branch without a name")
		}
		if b.run == nil {
			return nil, compositionErrorf("fan-out", "branch %q has no step", b.Name)
		}
		if _, dup := seen[b.Name]; dup {
			return nil, compositionErrorf("fan-out", "duplicate branch %q", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return &FanOutStep[I]{branches: append([]Branch[I](nil), branches...)}, nil
}

// MustFanOut is like FanOut but panics on an invalid branch list.
func MustFanOut[I any](branches ...Branch[I]) *FanOutStep[I] {
	f, err := FanOut(branches...)
	if err != nil {
		panic(err)
	}
	return f
}

// Names returns the branch names in declaration order.
func (f *FanOutStep[I]) Names() []string {
	names := make([]string, len(f.branches))
	for i, b := range f.branches {
		names[i] = b.Name
	}
	return names
}

// Invoke starts every branch before waiting on any of them. The first failure
// cancels the remaining branches and is returned.
func (f *FanOutStep[I]) Invoke(ctx context.Context, in I) (Record, error) {
	results := make([]any, len(f.branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range f.branches {
		g.Go(func() error {
			out, err := b.run(gctx, in)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec := make(Record, len(f.branches))
	for i, b := range f.branches {
		rec[b.Name] = results[i]
	}
	return rec, nil
}

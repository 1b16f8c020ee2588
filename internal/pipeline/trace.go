package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type traced[I, O any] struct {
	name string
	step Step[I, O]
}

// Traced logs the start, duration and outcome of every invocation of step.
func Traced[I, O any](name string, step Step[I, O]) Step[I, O] {
	return &traced[I, O]{name: name, step: step}
}

func (t *traced[I, O]) Invoke(ctx context.Context, in I) (O, error) {
	start := time.Now()
	log.Debug().Str("step", t.name).Msg("Step started")

	out, err := t.step.Invoke(ctx, in)
	if err != nil {
		log.Error().Err(err).
			Str("step", t.name).
			Dur("elapsed", time.Since(start)).
			Msg("Step failed")
		return out, err
	}

	log.Debug().
		Str("step", t.name).
		Dur("elapsed", time.Since(start)).
		Msg("Step finished")
	return out, nil
}

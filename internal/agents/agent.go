// Package agents exposes pipeline steps as tools to a model-driven agent loop.
package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	lcagents "github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// DefaultMaxIterations bounds the agent loop when no limit is configured.
const DefaultMaxIterations = 5

// ErrNotFinished is returned when the model has not produced a final answer
// within the iteration bound.
var ErrNotFinished = lcagents.ErrNotFinished

// Agent runs a zero-shot ReAct loop: the model picks a tool and its input,
// the tool runs, the observation is fed back, until a final answer.
type Agent struct {
	executor    *lcagents.Executor
	tools       []tools.Tool
	temperature *float64
}

// Option configures an Agent.
type Option func(*agentOptions)

type agentOptions struct {
	maxIterations int
	temperature   *float64
	verbose       bool
}

// WithMaxIterations sets the loop bound. Values below 1 keep the default.
func WithMaxIterations(n int) Option {
	return func(o *agentOptions) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithTemperature sets the sampling temperature of the planning model.
func WithTemperature(t float64) Option {
	return func(o *agentOptions) { o.temperature = &t }
}

// WithVerbose logs every action and observation at info level instead of debug.
func WithVerbose() Option {
	return func(o *agentOptions) { o.verbose = true }
}

// New builds an agent over the given tools. Tool names must be unique
// ignoring case.
func New(model llms.Model, toolbox []tools.Tool, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, errors.New("agent requires a model")
	}
	if len(toolbox) == 0 {
		return nil, errors.New("agent requires at least one tool")
	}
	if err := checkToolNames(toolbox); err != nil {
		return nil, err
	}

	o := agentOptions{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&o)
	}

	handler := &logHandler{verbose: o.verbose}
	oneShot := lcagents.NewOneShotAgent(model, toolbox, lcagents.WithCallbacksHandler(handler))
	executor := lcagents.NewExecutor(oneShot,
		lcagents.WithMaxIterations(o.maxIterations),
		lcagents.WithCallbacksHandler(handler),
	)

	return &Agent{executor: executor, tools: toolbox, temperature: o.temperature}, nil
}

// Tools returns the toolbox the agent chooses from.
func (a *Agent) Tools() []tools.Tool {
	return a.tools
}

// MaxIterations returns the loop bound.
func (a *Agent) MaxIterations() int {
	return a.executor.MaxIterations
}

// Run asks the agent to answer input and returns its final answer.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	var opts []chains.ChainCallOption
	if a.temperature != nil {
		opts = append(opts, chains.WithTemperature(*a.temperature))
	}

	log.Info().
		Str("input", input).
		Int("max_iterations", a.executor.MaxIterations).
		Int("tools", len(a.tools)).
		Msg("Agent run started")

	answer, err := chains.Run(ctx, a.executor, input, opts...)
	if err != nil {
		if errors.Is(err, lcagents.ErrNotFinished) {
			return "", fmt.Errorf("agent gave no final answer after %d iterations: %w", a.executor.MaxIterations, err)
		}
		return "", fmt.Errorf("agent run: %w", err)
	}

	log.Info().Str("answer", preview(answer, 200)).Msg("Agent run finished")
	return answer, nil
}

// Invoke makes the agent usable as a pipeline step.
func (a *Agent) Invoke(ctx context.Context, input string) (string, error) {
	return a.Run(ctx, input)
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

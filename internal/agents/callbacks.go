package agents

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/schema"
)

// logHandler reports agent progress through zerolog.
type logHandler struct {
	callbacks.SimpleHandler
	verbose bool
}

var _ callbacks.Handler = (*logHandler)(nil)

func (h *logHandler) event() *zerolog.Event {
	if h.verbose {
		return log.Info()
	}
	return log.Debug()
}

func (h *logHandler) HandleAgentAction(_ context.Context, action schema.AgentAction) {
	h.event().
		Str("tool", action.Tool).
		Str("tool_input", preview(action.ToolInput, 200)).
		Msg("Agent action")
}

func (h *logHandler) HandleAgentFinish(_ context.Context, finish schema.AgentFinish) {
	h.event().
		Interface("return_values", finish.ReturnValues).
		Msg("Agent finish")
}

func (h *logHandler) HandleLLMError(_ context.Context, err error) {
	log.Error().Err(err).Msg("Agent model call failed")
}

func (h *logHandler) HandleChainError(_ context.Context, err error) {
	log.Warn().Err(err).Msg("Agent chain error")
}

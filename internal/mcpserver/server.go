// Package mcpserver serves the agent toolbox over MCP (JSON-RPC 2.0 on HTTP
// POST). Every tool takes one string argument, "input".
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/agents"
	"github.com/tmc/langchaingo/tools"
)

// Server answers initialize, ping, tools/list and tools/call.
type Server struct {
	tools   []tools.Tool
	info    serverInfo
	methods map[string]func(ctx context.Context, params json.RawMessage) (any, *rpcError)
}

// NewServer exposes toolbox. version is reported to clients on initialize.
func NewServer(toolbox []tools.Tool, version string) *Server {
	s := &Server{
		tools: toolbox,
		info:  serverInfo{Name: "promptchain", Version: version},
	}
	s.methods = map[string]func(context.Context, json.RawMessage) (any, *rpcError){
		"initialize": s.initialize,
		"ping":       func(context.Context, json.RawMessage) (any, *rpcError) { return struct{}{}, nil },
		"tools/list": s.listTools,
		"tools/call": s.callTool,
	}
	return s
}

// Handler returns the HTTP handler for JSON-RPC requests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeRPCError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "method not allowed")
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, http.StatusOK, nil, codeParseError, "Parse error")
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCError(w, http.StatusOK, req.ID, codeInvalidRequest, "Invalid Request")
		return
	}
	if req.isNotification() {
		log.Debug().Str("method", req.Method).Msg("MCP notification")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	method, ok := s.methods[req.Method]
	if !ok {
		writeRPCError(w, http.StatusOK, req.ID, codeMethodNotFound, "Method not found: "+req.Method)
		return
	}
	result, rpcErr := method(r.Context(), req.Params)
	if rpcErr != nil {
		writeRPCError(w, http.StatusOK, req.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	writeRPC(w, http.StatusOK, response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) initialize(context.Context, json.RawMessage) (any, *rpcError) {
	return &initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) listTools(context.Context, json.RawMessage) (any, *rpcError) {
	out := &listToolsResult{Tools: make([]toolDescriptor, 0, len(s.tools))}
	for _, t := range s.tools {
		out.Tools = append(out.Tools, toolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: jsonSchema{
				Type: "object",
				Properties: map[string]jsonSchema{
					"input": {Type: "string", Description: "Tool input"},
				},
			},
		})
	}
	return out, nil
}

// callTool reports tool failures inside the result so the calling model sees
// them; only an unknown tool or malformed params is a protocol error.
func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *rpcError) {
	var params callToolParams
	if len(raw) == 0 || json.Unmarshal(raw, &params) != nil || params.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params"}
	}
	input, _ := params.Arguments["input"].(string)

	out, err := agents.CallTool(ctx, s.tools, params.Name, input)
	if err != nil {
		var unknown *agents.UnknownToolError
		if errors.As(err, &unknown) {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Unknown tool: " + params.Name}
		}
		log.Error().Err(err).Str("tool", params.Name).Msg("MCP tool call failed")
		return &callToolResult{Content: textContent(err.Error()), IsError: true}, nil
	}

	if params.Name == agents.Base64ImageGeneratorName {
		return &callToolResult{Content: []content{{Type: "image", Data: out, MimeType: "image/jpeg"}}}, nil
	}
	return &callToolResult{Content: textContent(out)}, nil
}

func writeRPC(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode MCP response")
	}
}

func writeRPCError(w http.ResponseWriter, status int, id json.RawMessage, code int, message string) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	writeRPC(w, status, response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

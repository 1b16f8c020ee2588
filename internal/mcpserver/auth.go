package mcpserver

import (
	"net/http"

	"github.com/snappy-loop/promptchain/internal/auth"
)

// AuthMiddleware validates Authorization: Bearer <key> using auth.Service.
// Rejections are JSON-RPC error envelopes with HTTP 401 so MCP clients can
// surface them. When the service has no keys configured every request passes.
func AuthMiddleware(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			apiKey, err := auth.BearerToken(r)
			if err != nil {
				writeRPCError(w, http.StatusUnauthorized, nil, codeUnauthorized, err.Error())
				return
			}
			if _, err := authService.ValidateAPIKey(apiKey); err != nil {
				writeRPCError(w, http.StatusUnauthorized, nil, codeUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/agents"
	"github.com/snappy-loop/promptchain/internal/auth"
	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/mcpserver"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	log.Info().Str("version", version).Msg("Starting promptchain toolbox (MCP)")

	authService, err := auth.NewService(cfg.APIKeyHashes)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid API_KEY_HASHES")
	}

	llmClient, err := llm.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}
	defer llmClient.Close()

	toolbox := agents.DefaultTools(llmClient)
	for _, t := range toolbox {
		log.Info().Str("tool", t.Name()).Msg("Tool registered")
	}

	mcpSrv := mcpserver.NewServer(toolbox, version)
	mcpHTTP := &http.Server{
		Addr:         cfg.MCPAddr,
		Handler:      mcpserver.AuthMiddleware(authService)(mcpSrv.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.MCPAddr).Msg("MCP server listening")
		if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("MCP HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down toolbox...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mcpHTTP.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("MCP HTTP shutdown error")
	}
	log.Info().Msg("Toolbox exited")
}

// setupLogging installs the console writer and the global level. Unknown
// levels fall back to info.
func setupLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

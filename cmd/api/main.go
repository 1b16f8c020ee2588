package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/agents"
	"github.com/snappy-loop/promptchain/internal/auth"
	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/snappy-loop/promptchain/internal/handlers"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/mcpserver"
	"github.com/snappy-loop/promptchain/internal/recipes"
	"github.com/snappy-loop/promptchain/internal/storage"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	log.Info().Str("version", version).Msg("Starting promptchain API")

	llmClient, err := llm.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM client")
	}
	defer llmClient.Close()

	sink, err := storage.NewSink(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize output sink")
	}

	authService, err := auth.NewService(cfg.APIKeyHashes)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid API_KEY_HASHES")
	}
	if !authService.Enabled() {
		log.Warn().Msg("API_KEY_HASHES is empty; /v1 and /mcp are unauthenticated")
	}

	registry := recipes.Default(llmClient, cfg.AgentMaxIterations)
	h := handlers.NewHandler(registry, llmClient, sink, cfg.Sink, cfg.OutputDir, cfg.RequestTimeout)
	mcpSrv := mcpserver.NewServer(agents.DefaultTools(llmClient), version)

	r := mux.NewRouter()
	r.Use(auth.RequestID)
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.Handle("/mcp", mcpserver.AuthMiddleware(authService)(mcpSrv.Handler())).Methods("POST")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authService.Middleware)
	api.HandleFunc("/recipes", h.ListRecipes).Methods("GET")
	api.HandleFunc("/recipes/{name}", h.RunRecipe).Methods("POST")
	api.HandleFunc("/images", h.GenerateImage).Methods("POST")

	// Generation calls can run for minutes; the write timeout follows REQUEST_TIMEOUT.
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/storage"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfg *config.Config

	// Replaced in tests.
	newLLMClient = llm.NewClient
	newSink      = storage.NewSink
)

var rootCmd = &cobra.Command{
	Use:   "promptchain",
	Short: "Compose text and image generation steps into pipelines",
	Long: "promptchain runs named prompt pipelines (text generation, fan-out,\n" +
		"image generation, tool-using agents) and saves the results.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cfg = config.Load()
		setupLogging(cfg.LogLevel)
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.Version = version
}

func setupLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// commandContext bounds a command by REQUEST_TIMEOUT.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.RequestTimeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/snappy-loop/promptchain/internal/config"
)

func TestSetupLogging_LevelFromDotEnv(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	setupLogging(config.Load().LogLevel)
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Errorf("level = %s, want warn", got)
	}
}

func TestSetupLogging_UnknownLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	for _, level := range []string{"", "loud"} {
		setupLogging(level)
		if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
			t.Errorf("setupLogging(%q): level = %s, want info", level, got)
		}
	}
}

package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileSink writes payloads to the local filesystem.
type FileSink struct {
	// BaseDir anchors relative names; empty means the process working directory.
	BaseDir string
}

// NewFileSink returns a sink rooted at baseDir.
func NewFileSink(baseDir string) *FileSink {
	return &FileSink{BaseDir: baseDir}
}

// Resolve returns the absolute path a name is written to.
func (s *FileSink) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	base := s.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}
	return filepath.Abs(filepath.Join(base, name))
}

// Save creates missing parent directories and writes data, replacing any
// existing file at that path.
func (s *FileSink) Save(_ context.Context, name string, data []byte) error {
	full, err := s.Resolve(name)
	if err != nil {
		return &SinkError{Location: name, Op: "resolve", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &SinkError{Location: full, Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return &SinkError{Location: full, Op: "write", Err: err}
	}

	log.Info().
		Str("path", full).
		Int("size_bytes", len(data)).
		Msg("File written")
	return nil
}

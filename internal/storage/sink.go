package storage

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/config"
	"github.com/snappy-loop/promptchain/internal/pipeline"
)

// Sink persists a finished payload under a name.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SinkError is returned when a payload could not be persisted.
type SinkError struct {
	Location string
	Op       string // resolve, mkdir, write, upload
	Err      error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// DefaultName derives a file name from the time of the run.
func DefaultName(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + ".jpg"
}

// DefaultNameIn is DefaultName placed under dir.
func DefaultNameIn(dir string, now time.Time) string {
	if dir == "" {
		return DefaultName(now)
	}
	return path.Join(dir, DefaultName(now))
}

// SaveStep ends a pipeline: it stores its input under the name chosen by
// namer and yields that name.
func SaveStep(sink Sink, namer func() string) pipeline.Step[[]byte, string] {
	return pipeline.StepFunc[[]byte, string](func(ctx context.Context, data []byte) (string, error) {
		name := namer()
		if err := sink.Save(ctx, name, data); err != nil {
			return "", err
		}
		return name, nil
	})
}

// NewSink builds the sink selected by cfg.Sink.
func NewSink(cfg *config.Config) (Sink, error) {
	switch cfg.Sink {
	case "", "file":
		return NewFileSink(""), nil
	case "s3":
		return NewS3Sink(cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL)
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}

// Locate returns a URL or path a client can use to fetch a saved payload.
// Objects in a bucket without a public base get a presigned link.
func Locate(ctx context.Context, sink Sink, name string) string {
	switch s := sink.(type) {
	case *S3Sink:
		if u := s.PublicURL(name); u != "" {
			return u
		}
		u, err := s.PresignedURL(ctx, name, presignExpiry)
		if err != nil {
			log.Warn().Err(err).Str("key", name).Msg("Failed to presign object URL")
			return ""
		}
		return u
	case *FileSink:
		if p, err := s.Resolve(name); err == nil {
			return p
		}
	}
	return ""
}

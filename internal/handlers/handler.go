package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/promptchain/internal/auth"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/models"
	"github.com/snappy-loop/promptchain/internal/pipeline"
	"github.com/snappy-loop/promptchain/internal/recipes"
	"github.com/snappy-loop/promptchain/internal/storage"
)

// Handler contains all HTTP handlers
type Handler struct {
	recipes   *recipes.Registry
	client    *llm.Client
	sink      storage.Sink
	sinkName  string
	outputDir string
	timeout   time.Duration
	now       func() time.Time
}

// NewHandler creates a new handler
func NewHandler(
	registry *recipes.Registry,
	client *llm.Client,
	sink storage.Sink,
	sinkName string,
	outputDir string,
	timeout time.Duration,
) *Handler {
	return &Handler{
		recipes:   registry,
		client:    client,
		sink:      sink,
		sinkName:  sinkName,
		outputDir: outputDir,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "ok",
		TextProvider:  h.client.TextProvider,
		ImageProvider: h.client.ImageProvider,
		Sink:          h.sinkName,
	})
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	var (
		transportErr   *llm.TransportError
		compositionErr *pipeline.CompositionError
		sinkErr        *storage.SinkError
	)
	switch {
	case errors.Is(err, recipes.ErrUnknownRecipe):
		return http.StatusNotFound
	case errors.Is(err, recipes.ErrMissingInput), errors.Is(err, recipes.ErrUnknownInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &compositionErr), errors.As(err, &sinkErr):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// requestLogger tags log lines with the request ID and, when auth is on, the
// index of the API key that authorized the call.
func requestLogger(r *http.Request, runID string) zerolog.Logger {
	lc := log.With().Str("run_id", runID)
	if id := auth.GetRequestID(r.Context()); id != "" {
		lc = lc.Str("request_id", id)
	}
	if idx, err := auth.GetAPIKeyIndex(r.Context()); err == nil {
		lc = lc.Int("api_key_index", idx)
	}
	return lc.Logger()
}

func writeImage(w http.ResponseWriter, img *llm.Image, runID string) {
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("X-Run-ID", runID)
	if img.Model != "" {
		w.Header().Set("X-Image-Model", img.Model)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		log.Error().Err(err).Msg("Failed to write image response")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

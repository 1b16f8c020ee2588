package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/models"
)

// GenerateImage handles POST /v1/images
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	var opts []llm.ImageOption
	if req.NegativePrompt != "" {
		opts = append(opts, llm.WithNegativePrompt(req.NegativePrompt))
	}
	if req.Model != "" {
		opts = append(opts, llm.WithModel(req.Model))
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	runID := uuid.NewString()
	logger := requestLogger(r, runID)

	img, err := h.client.ImageStep(opts...).Invoke(ctx, req.Prompt)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate image")
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	logger.Info().Int64("size_bytes", img.Size()).Str("model", img.Model).Msg("Image generated")
	writeImage(w, img, runID)
}

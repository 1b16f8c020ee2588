package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/snappy-loop/promptchain/internal/models"
	"github.com/snappy-loop/promptchain/internal/storage"
)

// ListRecipes handles GET /v1/recipes
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	resp := models.ListRecipesResponse{Recipes: []models.RecipeInfo{}}
	for _, rc := range h.recipes.List() {
		info := models.RecipeInfo{
			Name:        rc.Name,
			Description: rc.Description,
			OutputName:  rc.OutputName,
			Params:      make([]models.RecipeParam, 0, len(rc.Params)),
		}
		for _, p := range rc.Params {
			info.Params = append(info.Params, models.RecipeParam{
				Name:        p.Name,
				Description: p.Description,
				Default:     p.Default,
				Required:    p.Required,
			})
		}
		resp.Recipes = append(resp.Recipes, info)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RunRecipe handles POST /v1/recipes/{name}
func (h *Handler) RunRecipe(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req models.RunRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Runs get their own ID; request IDs can be chosen by the caller and repeat.
	runID := uuid.NewString()
	logger := requestLogger(r, runID)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	out, err := h.recipes.Run(ctx, name, req.Inputs)
	if err != nil {
		logger.Error().Err(err).Str("recipe", name).Msg("Failed to run recipe")
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	if out.Image != nil && !req.Store {
		writeImage(w, out.Image, runID)
		return
	}

	resp := models.RunRecipeResponse{
		RunID:   runID,
		Recipe:  name,
		Text:    out.Text,
		Skipped: out.Skipped,
	}
	if out.Image != nil {
		objectName := path.Join(h.outputDir, runID+".jpg")
		if _, err := storage.SaveStep(h.sink, func() string { return objectName }).Invoke(ctx, out.Image.Data); err != nil {
			logger.Error().Err(err).Msg("Failed to store image")
			writeJSONError(w, statusFor(err), "failed to store image")
			return
		}
		resp.ImageName = objectName
		resp.ImageURL = storage.Locate(ctx, h.sink, objectName)
		resp.ImageBytes = out.Image.Size()
		resp.MimeType = out.Image.MimeType
	}
	resp.FinishedAt = h.now().UTC()
	logger.Info().Str("recipe", name).Str("image", resp.ImageName).Msg("Recipe finished")

	writeJSON(w, http.StatusOK, resp)
}

package models

import "time"

// RecipeParam describes one input of a recipe
type RecipeParam struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required"`
}

// RecipeInfo is the public description of a recipe
type RecipeInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Params      []RecipeParam `json:"params"`
	OutputName  string        `json:"output_name,omitempty"`
}

// ListRecipesResponse is the response for GET /v1/recipes
type ListRecipesResponse struct {
	Recipes []RecipeInfo `json:"recipes"`
}

// RunRecipeRequest is the request body for POST /v1/recipes/{name}
type RunRecipeRequest struct {
	Inputs map[string]string `json:"inputs"`
	// Store saves a generated image through the configured sink instead of
	// returning its bytes.
	Store bool `json:"store"`
}

// RunRecipeResponse is returned as JSON when a recipe yields no raw image body
type RunRecipeResponse struct {
	RunID      string    `json:"run_id"`
	Recipe     string    `json:"recipe"`
	Text       string    `json:"text,omitempty"`
	Skipped    string    `json:"skipped,omitempty"`
	ImageName  string    `json:"image_name,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	ImageBytes int64     `json:"image_bytes,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// GenerateImageRequest is the request body for POST /v1/images
type GenerateImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Model          string `json:"model,omitempty"`
}

// HealthResponse is the response for GET /healthz
type HealthResponse struct {
	Status        string `json:"status"`
	TextProvider  string `json:"text_provider"`
	ImageProvider string `json:"image_provider"`
	Sink          string `json:"sink"`
}

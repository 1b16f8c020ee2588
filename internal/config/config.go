package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr       string
	MCPAddr        string // standalone toolbox server (cmd/agents)
	LogLevel       string
	APIKeyHashes   []string // bcrypt hashes of accepted API keys; empty disables auth
	RequestTimeout time.Duration

	// Text generation
	TextProvider    string // openai, googleai or huggingface
	TextModel       string // provider default when empty
	TextAPIEndpoint string // if set, overrides the provider base URL

	// Credentials
	OpenAIAPIKey      string
	GeminiAPIKey      string
	HuggingFaceAPIKey string

	// Image generation
	ImageProvider           string // huggingface, gemini or imagen
	ImageModel              string
	ImageNegativePrompt     string
	HuggingFaceInferenceURL string
	GeminiAPIEndpoint       string

	// Output sink
	Sink      string // file or s3
	OutputDir string

	// S3/Storage
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Agent
	AgentMaxIterations int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	imageProvider := getEnv("IMAGE_PROVIDER", "huggingface")

	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		MCPAddr:        getEnv("MCP_ADDR", ":8081"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIKeyHashes:   getEnvList("API_KEY_HASHES"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 2*time.Minute),

		TextProvider:    getEnv("TEXT_PROVIDER", "openai"),
		TextModel:       getEnv("TEXT_MODEL", ""),
		TextAPIEndpoint: getEnv("TEXT_API_ENDPOINT", ""),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		HuggingFaceAPIKey: getEnv("HUGGINGFACEHUB_API_KEY", ""),

		ImageProvider:           imageProvider,
		ImageModel:              getEnv("IMAGE_MODEL", defaultImageModel(imageProvider)),
		ImageNegativePrompt:     getEnv("IMAGE_NEGATIVE_PROMPT", "blurry"),
		HuggingFaceInferenceURL: getEnv("HUGGINGFACE_INFERENCE_URL", "https://router.huggingface.co/hf-inference/models"),
		GeminiAPIEndpoint:       getEnv("GEMINI_API_ENDPOINT", ""),

		Sink:      getEnv("SINK", "file"),
		OutputDir: getEnv("OUTPUT_DIR", "output"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "promptchain-images"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		AgentMaxIterations: clampMin(getEnvInt("AGENT_MAX_ITERATIONS", 5), 1),
	}
}

func defaultImageModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash-image"
	case "imagen":
		return "imagen-4.0-generate-001"
	default:
		return "stabilityai/stable-diffusion-2"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

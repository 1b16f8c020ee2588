package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey ContextKey = "request_id"
	// APIKeyIndexKey is the context key for the index of the matching key hash
	APIKeyIndexKey ContextKey = "api_key_index"
)

// ErrInvalidAPIKey is returned when a key matches none of the configured hashes.
var ErrInvalidAPIKey = errors.New("invalid api key")

// Service checks bearer API keys against bcrypt hashes.
type Service struct {
	hashes [][]byte
}

// NewService creates an auth service. With no hashes, authentication is disabled.
func NewService(hashes []string) (*Service, error) {
	s := &Service{}
	for i, h := range hashes {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("api key hash %d: %w", i, err)
		}
		s.hashes = append(s.hashes, []byte(h))
	}
	return s, nil
}

// Enabled reports whether any key hash is configured.
func (s *Service) Enabled() bool {
	return len(s.hashes) > 0
}

// HashAPIKey returns the bcrypt hash to configure for key.
func HashAPIKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("empty api key")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ValidateAPIKey returns the index of the hash that matches apiKey.
func (s *Service) ValidateAPIKey(apiKey string) (int, error) {
	for i, h := range s.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(apiKey)) == nil {
			return i, nil
		}
	}
	return -1, ErrInvalidAPIKey
}

// BearerToken extracts the key from an "Authorization: Bearer <key>" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}
	apiKey := strings.TrimSpace(parts[1])
	if apiKey == "" {
		return "", errors.New("empty api key")
	}
	return apiKey, nil
}

// Middleware creates an authentication middleware
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		apiKey, err := BearerToken(r)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}

		idx, err := s.ValidateAPIKey(apiKey)
		if err != nil {
			log.Debug().Str("path", r.URL.Path).Msg("API key rejected")
			writeJSONError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		ctx := context.WithValue(r.Context(), APIKeyIndexKey, idx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID tags each request with an ID, reusing X-Request-ID when the client sends one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetAPIKeyIndex retrieves the matched key index from context
func GetAPIKeyIndex(ctx context.Context) (int, error) {
	idx, ok := ctx.Value(APIKeyIndexKey).(int)
	if !ok {
		return -1, fmt.Errorf("api key index not found in context")
	}
	return idx, nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

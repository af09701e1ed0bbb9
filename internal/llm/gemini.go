package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Request is a single text generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature *float32 // nil leaves the model default
	TopP        float32
	TopK        float32
	MaxTokens   int32
}

// Backend is the text-in/text-out boundary to the generation provider.
type Backend interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// BackendFactory builds a Backend bound to one API surface version.
type BackendFactory func(ctx context.Context, apiVersion string) (Backend, error)

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client     *genai.Client
	apiVersion string
}

// NewGeminiFactory returns a BackendFactory for the Gemini API. baseURL may
// be empty to use the SDK default; httpClient may be nil.
func NewGeminiFactory(apiKey, baseURL string, httpClient *http.Client) BackendFactory {
	return func(ctx context.Context, apiVersion string) (Backend, error) {
		return NewGeminiBackend(ctx, apiKey, apiVersion, baseURL, httpClient)
	}
}

// NewGeminiBackend creates a genai client pinned to apiVersion.
func NewGeminiBackend(ctx context.Context, apiKey, apiVersion, baseURL string, httpClient *http.Client) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", ErrAuthentication)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			APIVersion: apiVersion,
			BaseURL:    baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client, apiVersion: apiVersion}, nil
}

// GenerateText sends the prompt and returns the concatenated response text.
func (b *GeminiBackend) GenerateText(ctx context.Context, req Request) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return "", translateError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// generateConfig maps req onto the SDK config. A set temperature is always
// sent, zero included.
func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(*req.Temperature)
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(req.TopP)
	}
	if req.TopK > 0 {
		cfg.TopK = genai.Ptr(req.TopK)
	}
	return cfg
}

// translateError turns genai API errors into *StatusError so callers can
// classify them without importing the SDK.
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generate content: %w", &StatusError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message})
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("generate content: %w", &StatusError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message})
	}
	return fmt.Errorf("generate content: %w", err)
}

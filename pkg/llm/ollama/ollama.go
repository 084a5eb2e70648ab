// Package ollama implements pkg/llm's Generator client for Ollama's generate API
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/foliolabs/folio/pkg/llm"
)

const (
	// DefaultModel is the default model used for generation.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Generator wraps Ollama's generate API.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the Ollama generator.
type GeneratorConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model to use (e.g., "llama3.2", "mistral").
	// Defaults to DefaultModel if empty.
	Model string
}

// generateRequest is the request body for Ollama's generate API.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the non-streaming response from Ollama's generate API.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new generator using Ollama's generate API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Generate produces a completion for the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", llm.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrGeneration, err)
	}

	return genResp.Response, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)

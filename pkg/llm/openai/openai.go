// Package openai implements pkg/llm's Generator for OpenAI-compatible
// chat completion endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/foliolabs/folio/pkg/llm"
)

const (
	// DefaultModel is the default model used for generation.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// apiKeyEnv names the environment variable holding the API key.
	apiKeyEnv = "OPENAI_API_KEY"
)

// Generator wraps an OpenAI-compatible /v1/chat/completions API.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the OpenAI generator.
type GeneratorConfig struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model. Defaults to DefaultModel if empty.
	Model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewGenerator creates a new generator over an OpenAI-compatible API.
// The API key is read from OPENAI_API_KEY.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", apiKeyEnv)
	}

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
		apiKey:  key,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Generate produces a completion for the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", llm.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: openai returned status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrGeneration, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", llm.ErrGeneration)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)

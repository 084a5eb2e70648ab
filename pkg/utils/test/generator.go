package testutils

import (
	"context"
	"errors"
	"sync"
)

// MockGenerator is a test language-model generator.
type MockGenerator struct {
	// Response is returned for every Generate call.
	Response string

	// Err, when set, is returned instead of a response.
	Err error

	mu sync.Mutex

	// Prompts records every prompt passed to Generate.
	Prompts []string

	// Temperatures records every temperature passed to Generate.
	Temperatures []float64
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.Temperatures = append(m.Temperatures, temperature)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGenerator) Close() error {
	return nil
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// ErrMockGeneration is a reusable upstream failure for tests.
var ErrMockGeneration = errors.New("mock generation failure")

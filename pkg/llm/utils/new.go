// Package llmutils is the llm utility package
package llmutils

import (
	"fmt"

	"github.com/foliolabs/folio/pkg/llm"
	"github.com/foliolabs/folio/pkg/llm/ollama"
	"github.com/foliolabs/folio/pkg/llm/openai"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewGenerator(ollama.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewGenerator(openai.GeneratorConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", o.ProviderType)
	}
}

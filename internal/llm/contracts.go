package llm

import "context"

// Generator is the language-model boundary. One system instruction plus
// one user prompt in, free-form text out. The rest of the pipeline never
// branches on provider.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

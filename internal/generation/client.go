// Package generation provides text-generation clients for the query pipeline.
// Every client normalizes the model's response to a plain string at this
// boundary; callers never branch on response shape.
package generation

import "context"

// TextClient is the minimal interface pipeline stages use to call an LLM.
type TextClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

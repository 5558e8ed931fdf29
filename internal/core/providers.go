package core

import "context"

// ModelProvider is the gateway to the local model backend.
type ModelProvider interface {
	// Complete sends one completion request. The system prompt is built
	// from promptCtx; systemOverride replaces the default instruction
	// block when non-empty.
	Complete(ctx context.Context, message string, promptCtx *PromptContext, systemOverride string) (string, error)
	// Unload asks the backend to evict the model immediately.
	Unload(ctx context.Context) error
}

// PromptComposer renders the final system prompt for the model.
type PromptComposer interface {
	Compose(instructions string, facts []Fact, recent []Message) string
}

package domain

import "context"

// CompletionRequest is a single-prompt chat completion.
type CompletionRequest struct {
	Prompt string
	// AllowToolCalls lets the provider pick auxiliary tool calls on its own
	// (function choice "auto").
	AllowToolCalls bool
}

// Completer returns the textual content of a chat completion.
// An empty string means the provider returned no textual content.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

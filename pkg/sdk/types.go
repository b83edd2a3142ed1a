package convsearch

import "context"

// Query is one conversational search call.
type Query struct {
	// ConversationID enables history; empty means a stateless search.
	ConversationID string
	// Message is the new user message. It is stored as a turn when ConversationID is set.
	Message               string
	Index                 string
	Fields                []string
	SemanticConfiguration string
}

// Document is a search result with internal scoring keys removed.
type Document map[string]any

// Completer turns a prompt into completion text. Return "" when the model
// produced no textual content.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

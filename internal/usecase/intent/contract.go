package intent

import (
	"context"

	"github.com/kailas-cloud/convsearch/internal/domain"
)

// Completer produces chat completions for intent prompts.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

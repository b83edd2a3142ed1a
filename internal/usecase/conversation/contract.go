package conversation

import (
	"context"

	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
)

// Store persists conversation turns.
type Store interface {
	Append(ctx context.Context, turn domconv.Turn) error
	History(ctx context.Context, conversationID string) ([]domconv.Turn, error)
	// Name is the backend name used in public error messages.
	Name() string
}

// IntentResolver rewrites a message into a search query given prior turns.
type IntentResolver interface {
	Resolve(ctx context.Context, history []string, newMessage string) (string, error)
}

// SearchGateway dispatches search requests.
type SearchGateway interface {
	Execute(ctx context.Context, req request.Request) ([]result.Document, error)
}

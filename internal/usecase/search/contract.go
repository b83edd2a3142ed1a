package search

import (
	"context"

	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
)

// Searcher dispatches a hybrid query to the search provider.
type Searcher interface {
	Search(ctx context.Context, q request.Hybrid) ([]result.Document, error)
}

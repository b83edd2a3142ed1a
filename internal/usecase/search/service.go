package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
)

// Service builds hybrid semantic/vector queries and dispatches them.
type Service struct {
	searcher Searcher
}

// New creates a search gateway.
func New(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Execute runs the request. An empty query makes no provider call and yields no documents.
func (s *Service) Execute(ctx context.Context, req request.Request) ([]result.Document, error) {
	if req.IsEmpty() {
		return []result.Document{}, nil
	}

	docs, err := s.searcher.Search(ctx, request.NewHybrid(req))
	if err != nil {
		return nil, fmt.Errorf("search index %s: %w", req.Index(), err)
	}
	if docs == nil {
		docs = []result.Document{}
	}
	return docs, nil
}

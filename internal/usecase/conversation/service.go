package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
	"github.com/kailas-cloud/convsearch/internal/logger"
)

// Request is one inbound search-with-history call.
type Request struct {
	ConversationID        string
	Message               string
	IndexToSearch         string
	Fields                []string
	SemanticConfiguration string
}

// Response carries the sanitized result documents.
type Response struct {
	Results []result.Document
}

// Service sequences history retrieval, intent resolution, persistence and search.
type Service struct {
	store    Store
	resolver IntentResolver
	search   SearchGateway
	now      func() time.Time
	newID    func() string
}

// New creates a conversation search service.
func New(store Store, resolver IntentResolver, search SearchGateway) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		search:   search,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock overrides the turn timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDFunc overrides the turn id generator.
func (s *Service) WithIDFunc(newID func() string) *Service {
	s.newID = newID
	return s
}

// Handle runs the pipeline for one request. Failures are returned as
// *domain.StepError; a missing index yields domain.ErrIndexRequired.
func (s *Service) Handle(ctx context.Context, req Request) (Response, error) {
	if req.IndexToSearch == "" {
		return Response{}, domain.ErrIndexRequired
	}

	ctx, log := logger.WithFields(ctx,
		zap.String("conversation_id", req.ConversationID),
		zap.String("index", req.IndexToSearch),
	)

	var history []string
	if req.ConversationID != "" {
		turns, err := s.store.History(ctx, req.ConversationID)
		if err != nil {
			log.Error("history retrieval failed", zap.String("store", s.store.Name()), zap.Error(err))
			return Response{}, domain.NewStepError(domain.ErrHistoryRetrieval,
				"Error retrieving data from "+s.store.Name(), err)
		}
		history = domconv.Texts(turns)
		log.Debug("retrieved history",
			zap.Int("turns", len(history)),
			zap.String("history", domconv.JoinHistory(history)),
		)
	}

	query := req.Message
	if len(history) > 0 {
		resolved, err := s.resolver.Resolve(ctx, history, req.Message)
		if err != nil {
			log.Error("intent resolution failed", zap.Error(err))
			return Response{}, domain.NewStepError(domain.ErrIntentResolution,
				"Error resolving search intent", err)
		}
		query = resolved
	}
	log.Info("search query resolved", zap.String("query", query))

	if req.ConversationID != "" && req.Message != "" {
		if err := s.saveTurn(ctx, req); err != nil {
			log.Error("history save failed", zap.String("store", s.store.Name()), zap.Error(err))
			return Response{}, domain.NewStepError(domain.ErrHistorySave,
				"Error saving data to "+s.store.Name(), err)
		}
		log.Info("conversation turn saved")
	}

	docs, err := s.search.Execute(ctx,
		request.New(query, req.IndexToSearch, req.Fields, req.SemanticConfiguration))
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return Response{}, domain.NewStepError(domain.ErrSearch,
			"Error calling Azure AI search", err)
	}
	log.Debug("search completed", zap.Int("documents", len(docs)))

	return Response{Results: result.Clean(docs)}, nil
}

func (s *Service) saveTurn(ctx context.Context, req Request) error {
	turn, err := domconv.New(s.newID(), req.ConversationID, req.Message, s.now())
	if err != nil {
		return err //nolint:wrapcheck // domain validation error
	}
	return s.store.Append(ctx, turn) //nolint:wrapcheck // caller wraps into StepError
}

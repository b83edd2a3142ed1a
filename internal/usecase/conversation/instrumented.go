package conversation

import (
	"context"
	"time"

	"go.uber.org/zap"

	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
	"github.com/kailas-cloud/convsearch/internal/metrics"
)

// InstrumentedStore wraps Store with operation metrics and logging.
type InstrumentedStore struct {
	inner  Store
	logger *zap.Logger
}

// NewInstrumentedStore wraps a store with observability.
func NewInstrumentedStore(inner Store, logger *zap.Logger) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, logger: logger}
}

// Name returns the wrapped store name.
func (s *InstrumentedStore) Name() string { return s.inner.Name() }

// Append delegates to the inner store and records the outcome.
func (s *InstrumentedStore) Append(ctx context.Context, turn domconv.Turn) error {
	start := time.Now()
	err := s.inner.Append(ctx, turn)
	s.observe("append", start, err)
	return err //nolint:wrapcheck // transparent decorator
}

// History delegates to the inner store and records the outcome.
func (s *InstrumentedStore) History(ctx context.Context, conversationID string) ([]domconv.Turn, error) {
	start := time.Now()
	turns, err := s.inner.History(ctx, conversationID)
	s.observe("history", start, err)
	return turns, err //nolint:wrapcheck // transparent decorator
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	duration := time.Since(start)
	name := s.inner.Name()

	metrics.StoreOperationsTotal.WithLabelValues(name, op, metrics.Status(err)).Inc()
	metrics.StoreOperationDuration.WithLabelValues(name, op).Observe(duration.Seconds())

	if err != nil {
		s.logger.Error("Store operation failed",
			zap.String("store", name),
			zap.String("op", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Store operation completed",
		zap.String("store", name),
		zap.String("op", op),
		zap.Duration("duration", duration),
	)
}

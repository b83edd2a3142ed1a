package convsearch

import "github.com/kailas-cloud/convsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrIndexRequired    = domain.ErrIndexRequired
	ErrHistoryRetrieval = domain.ErrHistoryRetrieval
	ErrHistorySave      = domain.ErrHistorySave
	ErrIntentResolution = domain.ErrIntentResolution
	ErrSearch           = domain.ErrSearch
)

// StepError carries the failed pipeline step and its cause. Use errors.As() to inspect.
type StepError = domain.StepError

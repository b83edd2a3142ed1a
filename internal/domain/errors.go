package domain

import "errors"

var (
	// ErrIndexRequired signals a request without a target search index.
	ErrIndexRequired = errors.New("index_to_search parameter is required.") //nolint:staticcheck // public message
	// ErrInvalidTurn signals a conversation turn missing its id, conversation id or text.
	ErrInvalidTurn = errors.New("invalid conversation turn")

	// ErrHistoryRetrieval signals a failure while reading conversation history.
	ErrHistoryRetrieval = errors.New("history retrieval failed")
	// ErrHistorySave signals a failure while persisting a conversation turn.
	ErrHistorySave = errors.New("history save failed")
	// ErrIntentResolution signals a completion provider failure while resolving intent.
	ErrIntentResolution = errors.New("intent resolution failed")
	// ErrSearch signals a search provider failure.
	ErrSearch = errors.New("search failed")
)

// StepError ties a failed pipeline step to its underlying cause.
// Error() renders the public message returned to the caller.
type StepError struct {
	Step    error
	Message string
	Err     error
}

// NewStepError creates a StepError for the given step sentinel.
func NewStepError(step error, message string, err error) error {
	return &StepError{Step: step, Message: message, Err: err}
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() []error { return []error{e.Step, e.Err} }

package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/convsearch/internal/domain"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
	"github.com/kailas-cloud/convsearch/internal/logger"
)

const promptTemplate = `
    Given the chat history and new user message, deduce the intent clearly suitable for an AI database search query:

    Chat History: %s

    New Message: %s

    Simplified Intent:
    `

// Service turns conversation history plus a new message into a search query.
type Service struct {
	completer      Completer
	allowToolCalls bool
}

// New creates an intent resolver.
func New(completer Completer) *Service {
	return &Service{completer: completer}
}

// WithToolCalls lets the completion provider choose tool calls automatically.
func (s *Service) WithToolCalls(allow bool) *Service {
	s.allowToolCalls = allow
	return s
}

// Resolve returns the search query for newMessage given prior turn texts.
// Without history newMessage is returned unchanged and no completion is requested.
// A completion without textual content also falls back to newMessage.
func (s *Service) Resolve(ctx context.Context, history []string, newMessage string) (string, error) {
	if len(history) == 0 {
		return newMessage, nil
	}

	content, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:         BuildPrompt(domconv.JoinHistory(history), newMessage),
		AllowToolCalls: s.allowToolCalls,
	})
	if err != nil {
		return "", fmt.Errorf("complete intent prompt: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(content))
	if query == "" {
		logger.FromContext(ctx).Warn("Completion had no content, using message as query")
		return newMessage, nil
	}

	logger.FromContext(ctx).Debug("Intent resolved",
		zap.Int("history_turns", len(history)),
		zap.String("query", query),
	)
	return query, nil
}

// BuildPrompt renders the intent prompt for a joined history and a new message.
func BuildPrompt(history, newMessage string) string {
	return fmt.Sprintf(promptTemplate, history, newMessage)
}

package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/convsearch/internal/domain"
)

// HistoryDelimiter joins turn texts into a single history string.
const HistoryDelimiter = ";"

// Turn is one stored message of a conversation. Immutable after creation.
type Turn struct {
	id             string
	conversationID string
	text           string
	createdAt      time.Time
}

// New creates a validated Turn.
func New(id, conversationID, text string, createdAt time.Time) (Turn, error) {
	if id == "" {
		return Turn{}, fmt.Errorf("%w: id is required", domain.ErrInvalidTurn)
	}
	if conversationID == "" {
		return Turn{}, fmt.Errorf("%w: conversation id is required", domain.ErrInvalidTurn)
	}
	if text == "" {
		return Turn{}, fmt.Errorf("%w: text is required", domain.ErrInvalidTurn)
	}
	return Turn{
		id:             id,
		conversationID: conversationID,
		text:           text,
		createdAt:      createdAt.UTC(),
	}, nil
}

// Reconstruct restores a Turn from storage without validation.
func Reconstruct(id, conversationID, text string, createdAt time.Time) Turn {
	return Turn{
		id:             id,
		conversationID: conversationID,
		text:           text,
		createdAt:      createdAt.UTC(),
	}
}

func (t Turn) ID() string             { return t.id }
func (t Turn) ConversationID() string { return t.conversationID }
func (t Turn) Text() string           { return t.text }
func (t Turn) CreatedAt() time.Time   { return t.createdAt }

// Texts returns the text of each turn, preserving order.
func Texts(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.text
	}
	return out
}

// JoinHistory concatenates turn texts with HistoryDelimiter.
func JoinHistory(texts []string) string {
	return strings.Join(texts, HistoryDelimiter)
}

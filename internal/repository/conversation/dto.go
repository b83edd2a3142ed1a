package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

// turnDoc is the stored shape of a turn. Field names match the documents
// written by earlier deployments so existing history stays readable.
type turnDoc struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Conversation   string `json:"conversation"`
	// CreatedAt is unix microseconds; it fits a JSON double without loss.
	CreatedAt int64 `json:"created_at,omitempty"`
	// Timestamp is the Cosmos DB system timestamp (seconds), read-only.
	Timestamp int64 `json:"_ts,omitempty"`
}

func toDoc(t domconv.Turn) turnDoc {
	return turnDoc{
		ID:             t.ID(),
		ConversationID: t.ConversationID(),
		Conversation:   t.Text(),
		CreatedAt:      t.CreatedAt().UnixMicro(),
	}
}

// createdAt falls back to the system timestamp for documents without created_at.
func (d turnDoc) createdAt() time.Time {
	switch {
	case d.CreatedAt > 0:
		return time.UnixMicro(d.CreatedAt)
	case d.Timestamp > 0:
		return time.Unix(d.Timestamp, 0)
	default:
		return time.Time{}
	}
}

func (d turnDoc) toDomain() domconv.Turn {
	return domconv.Reconstruct(d.ID, d.ConversationID, d.Conversation, d.createdAt())
}

func marshalTurn(t domconv.Turn) ([]byte, error) {
	data, err := json.Marshal(toDoc(t))
	if err != nil {
		return nil, fmt.Errorf("marshal turn: %w", err)
	}
	return data, nil
}

func unmarshalTurn(data []byte) (domconv.Turn, error) {
	var d turnDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return domconv.Turn{}, fmt.Errorf("unmarshal turn: %w", err)
	}
	return d.toDomain(), nil
}

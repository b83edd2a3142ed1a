package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
)

// searchHistoryRequest is the POST /ai_search_history body.
type searchHistoryRequest struct {
	ConversationID        string    `json:"conversation_id"`
	Conversation          string    `json:"conversation"`
	IndexToSearch         string    `json:"index_to_search"`
	Fields                fieldList `json:"fields"`
	SemanticConfiguration string    `json:"semanticConfiguration"`
}

var errNotObject = errors.New("body must be a single JSON object")

// decodeSearchHistoryRequest reads the whole body and accepts exactly one
// JSON object. null, arrays, scalars and trailing data are rejected.
func decodeSearchHistoryRequest(body io.Reader) (searchHistoryRequest, error) {
	var req searchHistoryRequest

	data, err := io.ReadAll(body)
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return req, errNotObject
	}
	// Unmarshal fails on anything after the first value.
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decode body: %w", err)
	}
	return req, nil
}

type searchHistoryResponse struct {
	Results []result.Document `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// fieldList accepts either a JSON array of strings or a comma separated string.
type fieldList []string

func (f *fieldList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("fields: %w", err)
		}
		*f = splitFields(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	*f = list
	return nil
}

func splitFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/convsearch/internal/db"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

// mockListStore is an in-memory listStore.
type mockListStore struct {
	lists    map[string][][]byte
	pingErr  error
	rpushErr error
	lrangeFn func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

func newMockListStore() *mockListStore {
	return &mockListStore{lists: make(map[string][][]byte)}
}

func (m *mockListStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockListStore) RPush(_ context.Context, key string, values ...[]byte) error {
	if m.rpushErr != nil {
		return m.rpushErr
	}
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *mockListStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return m.lists[key], nil
}

// mockDocumentStore records created items per partition.
type mockDocumentStore struct {
	items      map[string][][]byte
	createErr  error
	queryErr   error
	lastQuery     string
	lastParams    []db.QueryParam
	lastPartition *string
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{items: make(map[string][][]byte)}
}

func (m *mockDocumentStore) Ping(_ context.Context) error { return nil }

func (m *mockDocumentStore) CreateItem(_ context.Context, partitionKey string, item []byte) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[partitionKey] = append(m.items[partitionKey], item)
	return nil
}

func (m *mockDocumentStore) QueryItems(
	_ context.Context, partitionKey, query string, params ...db.QueryParam,
) ([][]byte, error) {
	m.lastQuery = query
	m.lastParams = params
	m.lastPartition = &partitionKey
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if partitionKey != "" {
		return m.items[partitionKey], nil
	}
	var all [][]byte
	for _, items := range m.items {
		all = append(all, items...)
	}
	return all, nil
}

func makeTurn(t *testing.T, id, conv, text string, at time.Time) domconv.Turn {
	t.Helper()
	turn, err := domconv.New(id, conv, text, at)
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	return turn
}

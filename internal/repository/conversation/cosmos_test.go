package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

func TestCosmosRepo_AppendWritesDocument(t *testing.T) {
	store := newMockDocumentStore()
	repo := NewCosmos(store)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.Append(context.Background(), makeTurn(t, "t1", "c1", "hi", at)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	items := store.items["c1"]
	if len(items) != 1 {
		t.Fatalf("expected 1 item in partition c1, got %d", len(items))
	}
	var doc map[string]any
	if err := json.Unmarshal(items[0], &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["id"] != "t1" || doc["conversation_id"] != "c1" || doc["conversation"] != "hi" {
		t.Errorf("unexpected document %v", doc)
	}
	if _, ok := doc["_ts"]; ok {
		t.Error("_ts must not be written")
	}
}

func TestCosmosRepo_HistoryIsParametrized(t *testing.T) {
	store := newMockDocumentStore()
	repo := NewCosmos(store)
	hostile := "x' OR '1'='1"

	if _, err := repo.History(context.Background(), hostile); err != nil {
		t.Fatalf("History: %v", err)
	}

	if strings.Contains(store.lastQuery, hostile) {
		t.Errorf("conversation id leaked into query text: %q", store.lastQuery)
	}
	if len(store.lastParams) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(store.lastParams))
	}
	p := store.lastParams[0]
	if p.Name != "@conversation_id" || p.Value != hostile {
		t.Errorf("unexpected parameter %+v", p)
	}
}

func TestCosmosRepo_HistoryQueriesConversationPartition(t *testing.T) {
	store := newMockDocumentStore()
	if _, err := NewCosmos(store).History(context.Background(), "c1"); err != nil {
		t.Fatalf("History: %v", err)
	}
	if store.lastPartition == nil || *store.lastPartition != "c1" {
		t.Errorf("expected query scoped to partition c1, got %v", store.lastPartition)
	}
}

func TestCosmosRepo_PartitionByID(t *testing.T) {
	store := newMockDocumentStore()
	repo := NewCosmos(store).WithPartitionKeyPath(PartitionByID)
	ctx := context.Background()

	if err := repo.Append(ctx, makeTurn(t, "t1", "c1", "first", time.UnixMicro(1))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, makeTurn(t, "t2", "c1", "second", time.UnixMicro(2))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(store.items["t1"]) != 1 || len(store.items["t2"]) != 1 {
		t.Fatalf("expected one item per id partition, got %v", store.items)
	}

	turns, err := repo.History(ctx, "c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if store.lastPartition == nil || *store.lastPartition != "" {
		t.Errorf("expected cross-partition query, got partition %v", store.lastPartition)
	}
	if got := strings.Join(domconv.Texts(turns), ","); got != "first,second" {
		t.Errorf("history = %s, want first,second", got)
	}
}

func TestCosmosRepo_HistoryOrdersByCreation(t *testing.T) {
	store := newMockDocumentStore()
	store.items["c1"] = [][]byte{
		[]byte(`{"id":"b","conversation_id":"c1","conversation":"second","created_at":2000000}`),
		[]byte(`{"id":"legacy","conversation_id":"c1","conversation":"legacy","_ts":1}`),
		[]byte(`{"id":"c","conversation_id":"c1","conversation":"third","created_at":3000000}`),
	}
	repo := NewCosmos(store)

	turns, err := repo.History(context.Background(), "c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	got := make([]string, len(turns))
	for i, tr := range turns {
		got[i] = tr.Text()
	}
	want := "legacy,second,third"
	if strings.Join(got, ",") != want {
		t.Errorf("order = %v, want %s", got, want)
	}
}

func TestCosmosRepo_HistoryEmpty(t *testing.T) {
	turns, err := NewCosmos(newMockDocumentStore()).History(context.Background(), "none")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected no turns, got %d", len(turns))
	}
}

func TestCosmosRepo_Errors(t *testing.T) {
	store := newMockDocumentStore()
	store.createErr = errors.New("403 forbidden")
	store.queryErr = errors.New("503 unavailable")
	repo := NewCosmos(store)
	ctx := context.Background()

	if err := repo.Append(ctx, makeTurn(t, "t", "c", "hi", time.Now())); !errors.Is(err, store.createErr) {
		t.Errorf("Append error = %v", err)
	}
	if _, err := repo.History(ctx, "c"); !errors.Is(err, store.queryErr) {
		t.Errorf("History error = %v", err)
	}
}

func TestCosmosRepo_Name(t *testing.T) {
	if got := NewCosmos(newMockDocumentStore()).Name(); got != "Cosmos DB" {
		t.Errorf("Name() = %q", got)
	}
}

package conversation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/convsearch/internal/domain"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
	"github.com/kailas-cloud/convsearch/internal/domain/search/request"
	"github.com/kailas-cloud/convsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockStore struct {
	turns       map[string][]domconv.Turn
	historyErr  error
	appendErr   error
	historyCall int
	appendCall  int
	calls       *[]string
}

func newMockStore(calls *[]string) *mockStore {
	return &mockStore{turns: make(map[string][]domconv.Turn), calls: calls}
}

func (m *mockStore) Name() string { return "Cosmos DB" }

func (m *mockStore) Append(_ context.Context, turn domconv.Turn) error {
	m.appendCall++
	*m.calls = append(*m.calls, "append")
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns[turn.ConversationID()] = append(m.turns[turn.ConversationID()], turn)
	return nil
}

func (m *mockStore) History(_ context.Context, id string) ([]domconv.Turn, error) {
	m.historyCall++
	*m.calls = append(*m.calls, "history")
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.turns[id], nil
}

type mockResolver struct {
	out         string
	err         error
	calls       int
	lastHistory []string
	lastMessage string
}

func (m *mockResolver) Resolve(_ context.Context, history []string, msg string) (string, error) {
	m.calls++
	m.lastHistory = history
	m.lastMessage = msg
	if m.err != nil {
		return "", m.err
	}
	return m.out, nil
}

type mockGateway struct {
	docs  []result.Document
	err   error
	calls int
	last  request.Request
	log   *[]string
}

func (m *mockGateway) Execute(_ context.Context, req request.Request) ([]result.Document, error) {
	m.calls++
	m.last = req
	*m.log = append(*m.log, "search")
	return m.docs, m.err
}

type fixture struct {
	store    *mockStore
	resolver *mockResolver
	gateway  *mockGateway
	calls    []string
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{}
	f.store = newMockStore(&f.calls)
	f.resolver = &mockResolver{out: "resolved intent"}
	f.gateway = &mockGateway{docs: []result.Document{}, log: &f.calls}
	seq := 0
	f.svc = New(f.store, f.resolver, f.gateway).
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }).
		WithIDFunc(func() string {
			seq++
			return "turn-" + string(rune('0'+seq))
		})
	return f
}

func (f *fixture) seed(t *testing.T, id string, texts ...string) {
	t.Helper()
	for i, text := range texts {
		turn, err := domconv.New("seed-"+string(rune('a'+i)), id, text, time.Unix(int64(i), 0))
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		f.store.turns[id] = append(f.store.turns[id], turn)
	}
}

// --- Tests ---

func TestHandle_MissingIndex(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Handle(context.Background(), Request{ConversationID: "c1", Message: "hi"})
	if !errors.Is(err, domain.ErrIndexRequired) {
		t.Fatalf("expected ErrIndexRequired, got %v", err)
	}
	if len(f.calls) != 0 || f.resolver.calls != 0 {
		t.Errorf("expected no downstream calls, got %v", f.calls)
	}
}

func TestHandle_WhitespaceIndexIsPassedThrough(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Handle(context.Background(), Request{Message: "hi", IndexToSearch: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.gateway.calls != 1 || f.gateway.last.Index() != "  " {
		t.Errorf("expected search against index %q, got %d calls to %q", "  ", f.gateway.calls, f.gateway.last.Index())
	}
}

func TestHandle_NoConversationID(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Handle(context.Background(), Request{Message: "Red Shoes", IndexToSearch: "idx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.store.historyCall != 0 || f.store.appendCall != 0 {
		t.Error("expected no store calls without conversation id")
	}
	if f.resolver.calls != 0 {
		t.Error("resolver must not be invoked")
	}
	if f.gateway.last.Query() != "Red Shoes" {
		t.Errorf("query = %q, want message verbatim", f.gateway.last.Query())
	}
}

func TestHandle_FirstTurn(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Handle(context.Background(), Request{
		ConversationID: "c1", Message: "hi", IndexToSearch: "idx",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.resolver.calls != 0 {
		t.Error("resolver must not be invoked without history")
	}

	stored := f.store.turns["c1"]
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored turn, got %d", len(stored))
	}
	if stored[0].ConversationID() != "c1" || stored[0].Text() != "hi" || stored[0].ID() != "turn-1" {
		t.Errorf("unexpected stored turn %+v", stored[0])
	}

	if f.gateway.last.Query() != "hi" || f.gateway.last.Index() != "idx" {
		t.Errorf("unexpected search request: query=%q index=%q", f.gateway.last.Query(), f.gateway.last.Index())
	}

	want := []string{"history", "append", "search"}
	if !reflect.DeepEqual(f.calls, want) {
		t.Errorf("call order = %v, want %v", f.calls, want)
	}
}

func TestHandle_WithHistory(t *testing.T) {
	f := newFixture()
	f.seed(t, "c1", "I need boots", "for hiking")

	_, err := f.svc.Handle(context.Background(), Request{
		ConversationID:        "c1",
		Message:               "waterproof",
		IndexToSearch:         "products",
		Fields:                []string{"contentVector"},
		SemanticConfiguration: "default",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.resolver.calls != 1 {
		t.Fatalf("expected 1 resolve call, got %d", f.resolver.calls)
	}
	if got := domconv.JoinHistory(f.resolver.lastHistory); got != "I need boots;for hiking" {
		t.Errorf("history = %q", got)
	}
	if f.resolver.lastMessage != "waterproof" {
		t.Errorf("message = %q", f.resolver.lastMessage)
	}

	req := f.gateway.last
	if req.Query() != "resolved intent" {
		t.Errorf("query = %q, want resolved intent", req.Query())
	}
	if !reflect.DeepEqual(req.Fields(), []string{"contentVector"}) || req.SemanticConfiguration() != "default" {
		t.Errorf("unexpected search params %v %q", req.Fields(), req.SemanticConfiguration())
	}
}

func TestHandle_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Handle(ctx, Request{ConversationID: "c1", Message: "first", IndexToSearch: "idx"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.svc.Handle(ctx, Request{ConversationID: "c1", Message: "second", IndexToSearch: "idx"}); err != nil {
		t.Fatalf("second: %v", err)
	}

	if got := domconv.JoinHistory(f.resolver.lastHistory); got != "first" {
		t.Errorf("history on second request = %q, want %q", got, "first")
	}
	if len(f.store.turns["c1"]) != 2 {
		t.Errorf("expected 2 stored turns, got %d", len(f.store.turns["c1"]))
	}
}

func TestHandle_EmptyMessageNotPersisted(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Handle(context.Background(), Request{ConversationID: "c1", IndexToSearch: "idx"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.store.appendCall != 0 {
		t.Error("turn without text must not be persisted")
	}
	if f.store.historyCall != 1 {
		t.Error("history must still be fetched")
	}
}

func TestHandle_SanitizesResults(t *testing.T) {
	f := newFixture()
	f.gateway.docs = []result.Document{
		{"@search.score": 0.9, "chunk_id": "x", "title": "T"},
	}

	resp, err := f.svc.Handle(context.Background(), Request{Message: "hi", IndexToSearch: "idx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []result.Document{{"title": "T"}}
	if !reflect.DeepEqual(resp.Results, want) {
		t.Errorf("results = %v, want %v", resp.Results, want)
	}
}

func TestHandle_Failures(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		setup      func(t *testing.T, f *fixture)
		step       error
		wantPrefix string
		wantSearch bool
	}{
		{
			name:       "history",
			setup:      func(_ *testing.T, f *fixture) { f.store.historyErr = cause },
			step:       domain.ErrHistoryRetrieval,
			wantPrefix: "Error retrieving data from Cosmos DB: ",
		},
		{
			name: "intent",
			setup: func(t *testing.T, f *fixture) {
				f.seed(t, "c1", "earlier")
				f.resolver.err = cause
			},
			step:       domain.ErrIntentResolution,
			wantPrefix: "Error resolving search intent: ",
		},
		{
			name:       "append",
			setup:      func(_ *testing.T, f *fixture) { f.store.appendErr = cause },
			step:       domain.ErrHistorySave,
			wantPrefix: "Error saving data to Cosmos DB: ",
		},
		{
			name:       "search",
			setup:      func(_ *testing.T, f *fixture) { f.gateway.err = cause },
			step:       domain.ErrSearch,
			wantPrefix: "Error calling Azure AI search: ",
			wantSearch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(t, f)

			_, err := f.svc.Handle(context.Background(), Request{
				ConversationID: "c1", Message: "hi", IndexToSearch: "idx",
			})
			if !errors.Is(err, tt.step) {
				t.Fatalf("expected %v, got %v", tt.step, err)
			}
			if !errors.Is(err, cause) {
				t.Errorf("expected cause to be wrapped, got %v", err)
			}
			var se *domain.StepError
			if !errors.As(err, &se) {
				t.Fatalf("expected *domain.StepError, got %T", err)
			}
			if !strings.HasPrefix(err.Error(), tt.wantPrefix) || !strings.HasSuffix(err.Error(), "boom") {
				t.Errorf("message = %q, want prefix %q", err.Error(), tt.wantPrefix)
			}
			if (f.gateway.calls > 0) != tt.wantSearch {
				t.Errorf("search called = %v, want %v", f.gateway.calls > 0, tt.wantSearch)
			}
		})
	}
}

func TestHandle_SaveFailureAfterSuccessfulHistory(t *testing.T) {
	f := newFixture()
	f.seed(t, "c1", "earlier")
	f.store.appendErr = errors.New("request rate is large")

	_, err := f.svc.Handle(context.Background(), Request{
		ConversationID: "c1", Message: "hi", IndexToSearch: "idx",
	})
	if !errors.Is(err, domain.ErrHistorySave) {
		t.Fatalf("expected ErrHistorySave, got %v", err)
	}
	if !strings.Contains(err.Error(), "request rate is large") {
		t.Errorf("store failure message not embedded: %q", err.Error())
	}
}

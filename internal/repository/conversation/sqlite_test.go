package conversation

import (
	"context"
	"testing"
	"time"

	dbsqlite "github.com/kailas-cloud/convsearch/internal/db/sqlite"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	conn, err := dbsqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLite(conn)
}

func TestSQLiteRepo_RoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	// Same timestamp on purpose: order must follow insertion, not time.
	for _, text := range []string{"a", "b", "c"} {
		if err := repo.Append(ctx, makeTurn(t, "id-"+text, "c1", text, at)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := repo.Append(ctx, makeTurn(t, "other", "c2", "zzz", at)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	turns, err := repo.History(ctx, "c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, want := range []string{"a", "b", "c"} {
		if turns[i].Text() != want {
			t.Errorf("turn %d = %q, want %q", i, turns[i].Text(), want)
		}
	}
	if !turns[0].CreatedAt().Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", turns[0].CreatedAt(), at)
	}
}

func TestSQLiteRepo_HistoryIsParametrized(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, makeTurn(t, "t1", "c1", "secret", time.Now())); err != nil {
		t.Fatalf("Append: %v", err)
	}

	turns, err := repo.History(ctx, "x' OR '1'='1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("injection returned %d turns", len(turns))
	}
}

func TestSQLiteRepo_DuplicateIDRejected(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	turn := makeTurn(t, "dup", "c1", "hi", time.Now())

	if err := repo.Append(ctx, turn); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := repo.Append(ctx, turn); err == nil {
		t.Fatal("expected error on duplicate id")
	}
}

func TestSQLiteRepo_Ping(t *testing.T) {
	if err := newSQLiteRepo(t).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

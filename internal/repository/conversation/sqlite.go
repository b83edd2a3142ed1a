package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kailas-cloud/convsearch/internal/db"
	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

// sqlStore is the consumer interface for the SQLite driver (ISP).
// *sql.DB satisfies it.
type sqlStore interface {
	PingContext(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLiteRepo stores turns in the conversation_turns table; seq gives insertion order.
type SQLiteRepo struct {
	db sqlStore
}

// NewSQLite creates an SQLite-backed conversation repository.
func NewSQLite(conn sqlStore) *SQLiteRepo {
	return &SQLiteRepo{db: conn}
}

// Name implements usecase/conversation.Store.
func (r *SQLiteRepo) Name() string { return "SQLite" }

// Ping checks connectivity.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Append inserts the turn.
func (r *SQLiteRepo) Append(ctx context.Context, turn domconv.Turn) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (id, conversation_id, conversation, created_at)
		 VALUES (?, ?, ?, ?)`,
		turn.ID(), turn.ConversationID(), turn.Text(), turn.CreatedAt().UnixMicro(),
	)
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

// History returns all turns of a conversation in insertion order.
func (r *SQLiteRepo) History(ctx context.Context, conversationID string) ([]domconv.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, conversation, created_at
		 FROM conversation_turns
		 WHERE conversation_id = ?
		 ORDER BY seq`,
		conversationID,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	turns := make([]domconv.Turn, 0)
	for rows.Next() {
		var (
			id, convID, text string
			createdAt        int64
		)
		if err := rows.Scan(&id, &convID, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, domconv.Reconstruct(id, convID, text, time.UnixMicro(createdAt)))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return turns, nil
}

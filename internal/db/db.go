package db

import (
	"context"
	"time"
)

// Store is the key-value facade used by the Redis conversation driver.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides append-only list operations.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// QueryParam is a named parameter bound into a document query.
type QueryParam struct {
	Name  string
	Value any
}

// DocumentStore provides partitioned document operations (Cosmos DB).
// An empty partition key in QueryItems means a cross-partition query.
type DocumentStore interface {
	Pinger
	CreateItem(ctx context.Context, partitionKey string, item []byte) error
	QueryItems(ctx context.Context, partitionKey, query string, params ...QueryParam) ([][]byte, error)
}

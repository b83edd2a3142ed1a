package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/convsearch/internal/db"
)

// RPush appends values to the tail of the list at key.
func (s *Store) RPush(ctx context.Context, key string, values ...[]byte) error {
	elems := make([]string, len(values))
	for i, v := range values {
		elems[i] = string(v)
	}
	cmd := s.b().Rpush().Key(key).Element(elems...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// LRange returns list elements between start and stop (inclusive, negative from tail).
// A missing key yields an empty slice.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return [][]byte{}, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = []byte(it)
	}
	return out, nil
}

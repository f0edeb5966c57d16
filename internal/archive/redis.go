package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"personachat/internal/logging"
)

const (
	defaultRedisPrefix = "personachat:transcript:"
	listPageSize       = 100
)

// RedisStore keeps each entry as a JSON string plus a sorted-set index
// ordered by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client. A zero ttl keeps entries until deleted.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, e *Entry) error {
	prepare(e)
	val, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(e.ID), val, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(e.CreatedAt.UnixNano()), Member: e.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	logging.StoreDebug("archived transcript %s in redis", e.ID)
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, fmt.Errorf("failed to decode transcript %s: %w", id, err)
	}
	return &e, nil
}

// List implements Store. Index members whose entry has expired are pruned,
// and the index is paged until limit live entries are found or it runs out.
func (s *RedisStore) List(ctx context.Context, limit int) ([]Entry, error) {
	page := int64(listPageSize)
	if limit > 0 && int64(limit) < page {
		page = int64(limit)
	}

	var out []Entry
	for start := int64(0); ; {
		ids, err := s.client.ZRevRange(ctx, s.indexKey(), start, start+page-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list transcripts: %w", err)
		}
		pruned := 0
		for _, id := range ids {
			e, err := s.Get(ctx, id)
			if errors.Is(err, ErrNotFound) {
				if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
					logging.Get(logging.CategoryStore).Warn("failed to prune expired transcript %s: %v", id, err)
				} else {
					pruned++
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, *e)
			if limit > 0 && len(out) == limit {
				return out, nil
			}
		}
		if int64(len(ids)) < page {
			break
		}
		// removed members shift the rest of the index down
		start += int64(len(ids) - pruned)
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

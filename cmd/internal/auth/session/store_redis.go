package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldData      = "data"
	fieldCreatedAt = "created_at"
	fieldTouchedAt = "touched_at"
	fieldExpiresAt = "expires_at"
)

// RedisStore keeps each session in a hash that expires at the session's
// absolute expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore uses key prefix "avian:sess:" when prefix is empty.
func NewRedisStore(client redis.UniversalClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("session: nil redis client")
	}
	if prefix == "" {
		prefix = "avian:sess:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}, nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	rec := Record{ID: id, Data: []byte(vals[fieldData])}
	var ok1, ok2, ok3 bool
	rec.CreatedAt, ok1 = parseUnixNano(vals[fieldCreatedAt])
	rec.TouchedAt, ok2 = parseUnixNano(vals[fieldTouchedAt])
	rec.ExpiresAt, ok3 = parseUnixNano(vals[fieldExpiresAt])
	if !ok1 || !ok2 || !ok3 {
		// Not written by Save.
		return nil, nil
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, nil
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	key := s.key(rec.ID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldData, rec.Data,
			fieldCreatedAt, formatUnixNano(rec.CreatedAt),
			fieldTouchedAt, formatUnixNano(rec.TouchedAt),
			fieldExpiresAt, formatUnixNano(rec.ExpiresAt),
		)
		p.ExpireAt(ctx, key, rec.ExpiresAt)
		return nil
	})
	return err
}

// touchScript sets touched_at only on a hash that still exists, so an expired
// key is never recreated without a TTL.
var touchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
return 0
`)

// Touch only updates an existing hash; HSET keeps the key's expiry.
func (s *RedisStore) Touch(ctx context.Context, id string, at time.Time) error {
	return touchScript.Run(ctx, s.client, []string{s.key(id)}, fieldTouchedAt, formatUnixNano(at)).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func formatUnixNano(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func parseUnixNano(s string) (time.Time, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, n).UTC(), true
}

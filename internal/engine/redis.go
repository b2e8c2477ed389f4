package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

const scanBatch = 500

// RedisConfig configures the distributed backend.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// redisStore keeps one region's entries under a key prefix in Redis. Eviction
// is left to the server's maxmemory policy.
type redisStore struct {
	client *redis.Client
	prefix string
}

func newRedisStore(client *redis.Client, prefix string) *redisStore {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) kind() string { return cachemgmt.RegionTypeDistributed }

func (s *redisStore) key(key string) string { return s.prefix + key }

func (s *redisStore) load(ctx context.Context, redisKey string) (*record, error) {
	data, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache record: %w", err)
	}
	return &rec, nil
}

func (s *redisStore) save(ctx context.Context, redisKey string, rec *record, expiration time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal cache record: %w", err)
	}
	if err := s.client.Set(ctx, redisKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set to Redis: %w", err)
	}
	return nil
}

func (s *redisStore) get(ctx context.Context, key string, now time.Time) (*record, bool, error) {
	redisKey := s.key(key)

	rec, err := s.load(ctx, redisKey)
	if err != nil || rec == nil {
		return nil, false, err
	}
	if rec.expired(now) {
		s.client.Del(ctx, redisKey)
		return nil, true, nil
	}

	rec.LastAccessedAt = now
	rec.AccessCount++
	if err := s.save(ctx, redisKey, rec, redis.KeepTTL); err != nil {
		return nil, false, err
	}

	return rec, false, nil
}

func (s *redisStore) put(ctx context.Context, key string, rec *record) (int, error) {
	var expiration time.Duration
	if !rec.ExpiresAt.IsZero() {
		expiration = max(time.Until(rec.ExpiresAt), time.Millisecond)
	}
	return 0, s.save(ctx, s.key(key), rec, expiration)
}

func (s *redisStore) remove(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) touch(ctx context.Context, key string, expiresAt, now time.Time) (bool, error) {
	redisKey := s.key(key)

	rec, err := s.load(ctx, redisKey)
	if err != nil || rec == nil {
		return false, err
	}
	if rec.expired(now) {
		return false, nil
	}

	rec.ExpiresAt = expiresAt
	var expiration time.Duration
	if !expiresAt.IsZero() {
		expiration = max(expiresAt.Sub(now), time.Millisecond)
	}
	return true, s.save(ctx, redisKey, rec, expiration)
}

func (s *redisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan Redis keys: %w", err)
	}
	return keys, nil
}

func (s *redisStore) clear(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := s.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("failed to delete Redis keys: %w", err)
		}
	}
	return nil
}

// records loads every live record of the region keyed by its unprefixed key.
func (s *redisStore) records(ctx context.Context, now time.Time) (map[string]*record, []string, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, nil, err
	}

	records := make(map[string]*record, len(keys))
	var names []string

	for start := 0; start < len(keys); start += scanBatch {
		batch := keys[start:min(start+scanBatch, len(keys))]
		values, err := s.client.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read Redis keys: %w", err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue
			}
			var rec record
			if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.expired(now) {
				continue
			}
			name := batch[i][len(s.prefix):]
			records[name] = &rec
			names = append(names, name)
		}
	}

	return records, names, nil
}

// entries lists live entries, most recently used first.
func (s *redisStore) entries(ctx context.Context, skip, take int, now time.Time) ([]cachemgmt.RawEntry, error) {
	records, names, err := s.records(ctx, now)
	if err != nil {
		return nil, err
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := records[names[i]], records[names[j]]
		if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
			return a.LastAccessedAt.After(b.LastAccessedAt)
		}
		return names[i] < names[j]
	})

	if skip >= len(names) {
		return []cachemgmt.RawEntry{}, nil
	}
	names = names[skip:min(skip+take, len(names))]

	result := make([]cachemgmt.RawEntry, 0, len(names))
	for _, name := range names {
		result = append(result, records[name].rawEntry(name))
	}
	return result, nil
}

func (s *redisStore) usage(ctx context.Context, now time.Time) (int64, int64, error) {
	records, _, err := s.records(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	var bytes int64
	for _, rec := range records {
		bytes += rec.Size
	}
	return int64(len(records)), bytes, nil
}

func (s *redisStore) resize(int) int { return 0 }

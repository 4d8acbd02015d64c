package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// idSpan bounds entry IDs so that seconds and ID fit one sorted set score
const idSpan = 1_000_000_000

// RedisStore keeps entries in Redis. Entry bodies live in a hash keyed by ID; sorted
// sets per difficulty and one for all entries rank them by seconds, then ID.
type RedisStore struct {
	client *backend.Client
	prefix string
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store connected to address
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	return NewRedisStoreFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisStoreFromClient creates a store on an existing client
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "railpuzzle:leaderboard:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) entriesKey() string {
	return s.prefix + "entries"
}

func (s *RedisStore) seqKey() string {
	return s.prefix + "seq"
}

func (s *RedisStore) indexKey(difficulty engine.Difficulty) string {
	if difficulty == "" {
		return s.prefix + "index:all"
	}
	return s.prefix + "index:" + string(difficulty)
}

func score(e Entry) float64 {
	return float64(e.Seconds)*idSpan + float64(e.ID)
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Add stores a new entry
func (s *RedisStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := normalize(e)
	if err != nil {
		return e, err
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return e, fmt.Errorf("failed to allocate entry id: %w", err)
	}
	e.ID = int(seq - 1)
	if e.ID >= idSpan {
		return e, fmt.Errorf("%w: id space exhausted", ErrInvalidEntry)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("failed to marshal entry: %w", err)
	}

	member := strconv.Itoa(e.ID)
	z := backend.Z{Score: score(e), Member: member}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.entriesKey(), member, data)
	pipe.ZAdd(ctx, s.indexKey(""), z)
	pipe.ZAdd(ctx, s.indexKey(e.Difficulty), z)
	if _, err := pipe.Exec(ctx); err != nil {
		return e, fmt.Errorf("failed to save to redis: %w", err)
	}

	return e, nil
}

// Top returns the fastest entries
func (s *RedisStore) Top(ctx context.Context, difficulty engine.Difficulty, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(difficulty), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard index: %w", err)
	}
	return s.load(ctx, ids)
}

// All returns every entry in rank order
func (s *RedisStore) All(ctx context.Context) ([]Entry, error) {
	return s.Top(ctx, "", 0)
}

// Close closes the redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, ids []string) ([]Entry, error) {
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	values, err := s.client.HMGet(ctx, s.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a body; skip it
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %s: %w", ids[i], err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

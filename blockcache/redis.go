package blockcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/heliodyne/pulseview/types"
)

// DefaultKeyPrefix namespaces block entries in a shared Redis instance.
const DefaultKeyPrefix = "pulseview:block:"

// DefaultRedisTimeout is the default per-operation timeout.
const DefaultRedisTimeout = 5 * time.Second

// RedisConfig configures the Redis block store.
type RedisConfig struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// KeyPrefix namespaces entries (default: pulseview:block:).
	KeyPrefix string
	// Timeout is the per-operation timeout (default 5s).
	Timeout time.Duration
	// TTL expires entries after the given duration. Zero means no expiry;
	// staleness is then governed only by the modification-time check.
	TTL time.Duration
}

// RedisStore persists blocks in Redis so multiple viewer instances share
// one block cache. Entries are msgpack envelopes carrying the raw bytes,
// the declared kind, and the store time.
type RedisStore struct {
	config RedisConfig
	client *goredis.Client
}

// redisEntry is the wire envelope for one stored block.
type redisEntry struct {
	FormatVersion int              `msgpack:"format_version"`
	Record        types.RecordType `msgpack:"record"`
	StoredAt      time.Time        `msgpack:"stored_at"`
	Bytes         []byte           `msgpack:"bytes"`
}

// NewRedisStore creates a Redis block store from the given config.
// Returns an error if the URL is empty or invalid.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("blockcache: redis store requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("blockcache: invalid redis URL: %w", err)
	}

	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRedisTimeout
	}

	return &RedisStore{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

func (s *RedisStore) key(fp types.Fingerprint) string {
	return s.config.KeyPrefix + string(fp)
}

// Get fetches and unwraps the envelope for fp.
func (s *RedisStore) Get(ctx context.Context, fp types.Fingerprint) (*Entry, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	raw, err := s.client.Get(opCtx, s.key(fp)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blockcache: redis get: %w", err)
	}

	var env redisEntry
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		// Unreadable envelope; report absent so the caller overwrites it.
		return nil, ErrNotFound
	}
	return &Entry{
		Block: types.RawBlock{
			Kind:  types.BlockKind{FormatVersion: env.FormatVersion, Record: env.Record},
			Bytes: env.Bytes,
		},
		StoredAt: env.StoredAt,
	}, nil
}

// Put stores the block under fp with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, fp types.Fingerprint, block types.RawBlock) error {
	env := redisEntry{
		FormatVersion: block.Kind.FormatVersion,
		Record:        block.Kind.Record,
		StoredAt:      time.Now().UTC(),
		Bytes:         block.Bytes,
	}
	body, err := msgpack.Marshal(&env)
	if err != nil {
		return fmt.Errorf("blockcache: marshal entry: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	if err := s.client.Set(opCtx, s.key(fp), body, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("blockcache: redis set: %w", err)
	}
	return nil
}

// Delete removes the entry for fp.
func (s *RedisStore) Delete(ctx context.Context, fp types.Fingerprint) error {
	opCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	if err := s.client.Del(opCtx, s.key(fp)).Err(); err != nil {
		return fmt.Errorf("blockcache: redis del: %w", err)
	}
	return nil
}

// Clear removes every entry under the key prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("blockcache: redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("blockcache: redis scan: %w", err)
	}
	return nil
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

// Package cache implements the generic key-value cache store over Redis.
// Values are JSON blobs; the semantic type lives at the call site. The
// cache is strictly a performance overlay: every entry must be
// reproducible by re-querying the backing store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidEntry marks a stored blob that failed to deserialize. It is
// distinct from a miss: a miss is success-with-none, an invalid entry is an
// error. Callers in the repository treat both as "fall through to the
// backing store".
var ErrInvalidEntry = errors.New("invalid cache entry")

// scanBatch bounds how many keys a single SCAN round trip may return
// during pattern deletion.
const scanBatch = 256

// Store is a Redis-backed cache. The client handle is shared and safe for
// concurrent use.
type Store struct {
	client redis.UniversalClient
}

// New constructs a cache store. Panics on a nil client; callers decide
// whether to run without a cache by not constructing one.
func New(client redis.UniversalClient) *Store {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Store{client: client}
}

// Get loads the blob at key into dest. Returns (false, nil) on a miss and
// (false, ErrInvalidEntry-wrapped) when the blob does not deserialize.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: key %q: %v", ErrInvalidEntry, key, err)
	}
	return true, nil
}

// Set serializes value and stores it under key. A zero ttl means no
// expiry; the repository always supplies one.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry %q: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key, or every matching key when the argument ends with
// the wildcard marker "*". Pattern deletion enumerates with SCAN and then
// deletes, which is best-effort and not atomic against concurrent writers
// repopulating a matching key between the two steps; stale entries left by
// that race expire at TTL.
func (s *Store) Delete(ctx context.Context, keyOrPattern string) error {
	if !strings.HasSuffix(keyOrPattern, "*") {
		if err := s.client.Del(ctx, keyOrPattern).Err(); err != nil {
			return fmt.Errorf("redis del %q: %w", keyOrPattern, err)
		}
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyOrPattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %q: %w", keyOrPattern, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del pattern %q: %w", keyOrPattern, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "leaveledger:idempotency:"

	// processingPlaceholder reserves a key before the handler has produced a
	// response, so a concurrent retry sees the request is in flight.
	processingPlaceholder = "processing"
)

// IdempotencyStore backs the Idempotency-Key middleware on the mutating
// endpoints, so a retried decision never debits twice.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: idempotencyPrefix,
	}
}

// CheckAndSet reserves the key if it is new and reports whether it already
// existed, returning any stored response. Passing a response stores it
// directly instead of the placeholder.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := processingPlaceholder
	if response != nil {
		value = string(response)
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil && err != redis.Nil {
		return false, nil, err
	}
	return true, existing, nil
}

// Update replaces the reserved key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

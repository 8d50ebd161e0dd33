package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// BlobStore implements repository.BlobStore on Redis string keys.
type BlobStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewBlobStore creates a Redis-backed blob store. A zero ttl stores keys
// without expiry; otherwise every save refreshes the expiry.
func NewBlobStore(client redis.Cmdable, ttl time.Duration) *BlobStore {
	return &BlobStore{
		client: client,
		ttl:    ttl,
	}
}

// Load returns the blob under key.
func (s *BlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("blob", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Save writes the blob under key.
func (s *BlobStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

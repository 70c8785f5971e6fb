package redisrevocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	auth "github.com/groceria/groceria-auth"
)

const DefaultPrefix = "groceria:revoked:"

// Cache stores revoked tokens in redis until they would have expired
// anyway. Keys are token digests so raw tokens never reach redis.
type Cache struct {
	client redis.Cmdable
	prefix string
}

var _ auth.RevocationCache = (*Cache)(nil)

func New(client redis.Cmdable, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(token), 1, ttl).Err()
}

func (c *Cache) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := c.client.Get(ctx, c.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenKeyPrefix = "revoked_jwt:"

// TokenDenylistRepository 用 Redis 记录已登出的 JWT（按 jti），过期后自动清除
type TokenDenylistRepository struct {
	Redis *redis.Client
}

func NewTokenDenylistRepository(rdb *redis.Client) *TokenDenylistRepository {
	return &TokenDenylistRepository{Redis: rdb}
}

func (r *TokenDenylistRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, revokedTokenKeyPrefix+jti, 1, ttl).Err()
}

func (r *TokenDenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.Redis.Exists(ctx, revokedTokenKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

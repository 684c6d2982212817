package infra

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tnqbao/gau-travel-service/config"
)

const revokedUserKeyPrefix = "revoked_user:"

// SessionStore tracks users whose outstanding tokens must be rejected.
type SessionStore interface {
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

type RedisClient struct {
	Client *redis.Client
}

func InitRedisClient(cfg *config.EnvConfig) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisHost + ":" + cfg.Redis.RedisPort,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	log.Println("Connected to Redis:", cfg.Redis.RedisPort+" on "+cfg.Redis.RedisHost)

	return &RedisClient{Client: client}
}

// RevokeUser stores the revocation time; tokens issued at or before it are rejected.
func (r *RedisClient) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	return r.Client.Set(ctx, revokedUserKeyPrefix+userID, time.Now().Unix(), ttl).Err()
}

func (r *RedisClient) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := r.Client.Get(ctx, revokedUserKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0), true, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

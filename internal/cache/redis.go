package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient ouvre la connexion Redis et vérifie qu'elle répond.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_HOST non configuré")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}

	log.Println("✅ Redis connecté avec succès")
	return client, nil
}

// IncrementRateLimit incrémente le compteur et repousse sa fenêtre.
func IncrementRateLimit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// internal/app/auth.go
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

// Auth validates the admin token guarding the scheduler control surface.
// The expected token lives in redis so it can be rotated without a
// restart.
type Auth struct {
	enabled     bool
	redis       *redis.Client
	tokenKey    string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		tokenKey:    config.Auth.TokenKey,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func (a *Auth) ValidateToken(ctx context.Context, token string) error {
	if !a.enabled {
		return nil
	}

	expected, err := a.redis.Get(ctx, a.tokenKey).Result()
	if err == redis.Nil {
		logger.Debug.Printf("No admin token found at key: %s", a.tokenKey)
		return fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return fmt.Errorf("redis error: %w", err)
	}

	if expected != token {
		logger.Debug.Printf("Admin token mismatch against key %s", a.tokenKey)
		return fmt.Errorf("invalid token")
	}

	return nil
}

package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/soupfinance/soupfinance/internal/config"
)

const (
	keyLoginEmail = "login:email:%s"
	keyLoginIP    = "login:ip:%s"
)

// LoginLimiter throttles credential checks per email and per source
// address. A nil limiter allows everything, so deployments without
// redis keep working.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLoginLimiter(cfg config.Config) *LoginLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	if cfg.LoginRatePerMinute <= 0 || cfg.LoginBurst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRatePerMinute / 60,
		burst:  cfg.LoginBurst,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) AllowEmail(ctx context.Context, email string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyLoginEmail, strings.ToLower(strings.TrimSpace(email)))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}

func (l *LoginLimiter) AllowIP(ctx context.Context, ip string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyLoginIP, strings.TrimSpace(ip))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}

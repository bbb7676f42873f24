package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/redis"
)

// RateDecision результат проверки одного запроса
type RateDecision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// RateUsage текущее состояние окна для клиента. ResetAt пуст, если окно ещё не открыто.
type RateUsage struct {
	Used      int64
	Remaining int64
	ResetAt   *time.Time
}

// RateLimiter ограничивает число запросов клиента в фиксированном окне. Счётчики живут в Redis.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
}

type rateRedis interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// NewRateLimiter создаёт limiter. Без Redis или с неполной конфигурацией limiter выключен.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RateLimiter{
		redis:   redisClient,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
	}
}

// Allow засчитывает запрос клиента и решает, пропускать ли его.
func (r *RateLimiter) Allow(ctx context.Context, client string) (RateDecision, error) {
	now := time.Now()
	if !r.enabled {
		return RateDecision{Allowed: true, Limit: r.limit, Remaining: r.limit, ResetAt: now.Add(r.window)}, nil
	}

	key := r.key(client)

	count, ttl, err := r.redis.IncrWindow(ctx, key, r.window)
	if err != nil {
		if count == 0 {
			return RateDecision{}, fmt.Errorf("rate limiter incr failed: %w", err)
		}
		// счётчик увеличен, но окно не открылось; решение принимаем по счётчику
		r.log.WithError(err).WithField("key", key).Warn("Failed to set rate limit window")
	}

	return RateDecision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: remainingOf(r.limit, count),
		ResetAt:   now.Add(ttl),
	}, nil
}

// Usage возвращает состояние окна без списания запроса.
func (r *RateLimiter) Usage(ctx context.Context, client string) (RateUsage, error) {
	if !r.enabled {
		return RateUsage{Remaining: r.limit}, nil
	}

	key := r.key(client)
	count, err := r.redis.GetInt(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return RateUsage{Remaining: r.limit}, nil
		}
		return RateUsage{}, fmt.Errorf("rate limiter usage failed: %w", err)
	}

	usage := RateUsage{Used: count, Remaining: remainingOf(r.limit, count)}
	if ttl, err := r.redis.TTL(ctx, key); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("Failed to read rate limit window")
	} else if ttl > 0 {
		resetAt := time.Now().Add(ttl)
		usage.ResetAt = &resetAt
	}

	return usage, nil
}

// Limit возвращает лимит запросов на окно.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Window возвращает длительность окна.
func (r *RateLimiter) Window() time.Duration {
	return r.window
}

// Enabled сообщает, включён ли limiter.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

func (r *RateLimiter) key(client string) string {
	return redis.GenerateKey(r.prefix, strings.ReplaceAll(client, ":", "_"))
}

func remainingOf(limit, used int64) int64 {
	if used >= limit {
		return 0
	}
	return limit - used
}

// ExtractClientIP определяет IP клиента: X-Real-IP, затем первый адрес X-Forwarded-For, затем RemoteAddr.
// Заголовки с некорректным адресом пропускаются.
func ExtractClientIP(r *http.Request) string {
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

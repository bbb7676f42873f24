package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/go-redis/redis/v8"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	return &Client{client: rdb, log: log}, mr, context.Background()
}

func TestConnectSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: mr.Port(), DB: 0}

	client, err := Connect(cfg, log)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: "0", DB: 0}
	if _, err := Connect(cfg, log); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestCloseNil(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Fatalf("expected nil error on nil client close, got %v", err)
	}
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected health error on nil client")
	}
}

func TestGenerateKey(t *testing.T) {
	if key := GenerateKey(KeyPrefixQuote, "123"); key != "quote:123" {
		t.Fatalf("unexpected key: %s", key)
	}
	if key := GenerateKey(KeyPrefixJobsList, "pending", "50", "0"); key != "jobs_list:pending:50:0" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestSetGetDelete(t *testing.T) {
	client, _, ctx := newTestClient(t)

	type payload struct {
		Subtotal string
	}

	val := payload{Subtotal: "544.13"}
	if err := client.Set(ctx, "quote:1", val, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got payload
	if err := client.Get(ctx, "quote:1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Subtotal != val.Subtotal {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := client.Delete(ctx, "quote:1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := client.Get(ctx, "quote:1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss after delete, got %v", err)
	}
}

func TestGetCorruptedValue(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	_ = mr.Set("quote:bad", "{not json")

	var dest struct{}
	err := client.Get(ctx, "quote:bad", &dest)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestDeleteByPrefix(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	_ = mr.Set("jobs_list:1", "a")
	_ = mr.Set("jobs_list:2", "b")
	_ = mr.Set("job:3", "c")

	if err := client.DeleteByPrefix(ctx, KeyPrefixJobsList); err != nil {
		t.Fatalf("delete by prefix failed: %v", err)
	}

	if mr.Exists("jobs_list:1") || mr.Exists("jobs_list:2") {
		t.Fatalf("expected list keys removed")
	}
	if !mr.Exists("job:3") {
		t.Fatalf("expected job key kept")
	}

	if err := client.DeleteByPrefix(ctx, "absent"); err != nil {
		t.Fatalf("expected no error for empty prefix match, got %v", err)
	}
}

func TestGetIntAndTTL(t *testing.T) {
	client, mr, ctx := newTestClient(t)

	client.client.Set(ctx, "counter", 5, 2*time.Second)

	val, err := client.GetInt(ctx, "counter")
	if err != nil {
		t.Fatalf("get int failed: %v", err)
	}
	if val != 5 {
		t.Fatalf("unexpected int value: %d", val)
	}

	ttl, err := client.TTL(ctx, "counter")
	if err != nil {
		t.Fatalf("ttl failed: %v", err)
	}
	if ttl <= 0 {
		t.Fatalf("expected positive ttl, got %v", ttl)
	}

	mr.FastForward(3 * time.Second)
	if _, err := client.GetInt(ctx, "counter"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss for expired key, got %v", err)
	}
}

func TestIncrWindow(t *testing.T) {
	client, mr, ctx := newTestClient(t)
	key := GenerateKey("ratelimit", "10.0.0.1")

	count, ttl, err := client.IncrWindow(ctx, key, time.Minute)
	if err != nil || count != 1 {
		t.Fatalf("expected first hit to open window, got %d err=%v", count, err)
	}
	if ttl != time.Minute || mr.TTL(key) != time.Minute {
		t.Fatalf("expected a one minute window, got %v (redis %v)", ttl, mr.TTL(key))
	}

	mr.FastForward(20 * time.Second)
	count, ttl, err = client.IncrWindow(ctx, key, time.Minute)
	if err != nil || count != 2 {
		t.Fatalf("expected second hit counted, got %d err=%v", count, err)
	}
	if ttl <= 0 || ttl > 40*time.Second {
		t.Fatalf("window must not be extended by later hits, got %v", ttl)
	}

	mr.FastForward(41 * time.Second)
	if count, _, _ = client.IncrWindow(ctx, key, time.Minute); count != 1 {
		t.Fatalf("expected fresh window after expiry, got %d", count)
	}
}

func TestHealth(t *testing.T) {
	client, _, ctx := newTestClient(t)
	if err := client.Health(ctx); err != nil {
		t.Fatalf("health failed: %v", err)
	}
}

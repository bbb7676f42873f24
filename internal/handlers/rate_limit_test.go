package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/services"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

type stubLimiter struct {
	allowSeq []bool
	idx      int
	limit    int64
	enabled  bool
	err      error
	usageErr error
}

func (s *stubLimiter) Allow(_ context.Context, _ string) (services.RateDecision, error) {
	if s.err != nil {
		return services.RateDecision{}, s.err
	}
	if s.idx >= len(s.allowSeq) {
		return services.RateDecision{Limit: s.limit, ResetAt: time.Now()}, nil
	}
	allowed := s.allowSeq[s.idx]
	s.idx++
	remaining := s.limit - int64(s.idx)
	if remaining < 0 {
		remaining = 0
	}
	return services.RateDecision{Allowed: allowed, Limit: s.limit, Remaining: remaining, ResetAt: time.Now().Add(time.Minute)}, nil
}

func (s *stubLimiter) Enabled() bool         { return s.enabled }
func (s *stubLimiter) Limit() int64          { return s.limit }
func (s *stubLimiter) Window() time.Duration { return time.Minute }
func (s *stubLimiter) Usage(_ context.Context, _ string) (services.RateUsage, error) {
	if s.usageErr != nil {
		return services.RateUsage{}, s.usageErr
	}
	reset := time.Now().Add(time.Minute)
	return services.RateUsage{Used: int64(s.idx), Remaining: s.limit - int64(s.idx), ResetAt: &reset}, nil
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	limiter := &stubLimiter{allowSeq: []bool{true, false}, limit: 1, enabled: true}

	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	wrapped := RateLimitMiddleware(limiter, newTestLogger(), handler)
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/calculate", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	rr1 := httptest.NewRecorder()
	wrapped(rr1, req)
	if rr1.Code != http.StatusOK || calls != 1 {
		t.Fatalf("first request expected 200, calls=1; got %d, calls=%d", rr1.Code, calls)
	}
	if rr1.Header().Get("X-RateLimit-Limit") != "1" || rr1.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected rate limit headers: %v", rr1.Header())
	}

	rr2 := httptest.NewRecorder()
	wrapped(rr2, req)
	if rr2.Code != http.StatusTooManyRequests || calls != 1 {
		t.Fatalf("second request expected 429, calls still 1; got %d, calls=%d", rr2.Code, calls)
	}
	if rr2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
}

func TestRateLimitMiddleware_DisabledSkips(t *testing.T) {
	limiter := &stubLimiter{enabled: false}
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	RateLimitMiddleware(limiter, newTestLogger(), handler)(rr, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	if calls != 1 || rr.Code != http.StatusOK {
		t.Fatalf("expected middleware to skip limiter, code=%d calls=%d", rr.Code, calls)
	}
}

func TestRateLimitMiddleware_Error(t *testing.T) {
	limiter := &stubLimiter{limit: 1, enabled: true, err: errors.New("fail")}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	RateLimitMiddleware(limiter, newTestLogger(), handler)(rr, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on limiter error, got %d", rr.Code)
	}
}

func TestRateLimitStatus_Disabled(t *testing.T) {
	handler := NewRateLimitHandler(&stubLimiter{enabled: false}, newTestLogger())
	rr := httptest.NewRecorder()

	handler.Status(rr, httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil))

	var resp RateLimitStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusOK || resp.Enabled {
		t.Fatalf("expected disabled status, got %d %+v", rr.Code, resp)
	}
}

func TestRateLimitStatus_Enabled(t *testing.T) {
	limiter := &stubLimiter{allowSeq: []bool{true}, limit: 5, enabled: true}
	_, _ = limiter.Allow(context.Background(), "")
	handler := NewRateLimitHandler(limiter, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	rr := httptest.NewRecorder()
	handler.Status(rr, req)

	var resp RateLimitStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Enabled || resp.Limit != 5 || resp.Used != 1 || resp.Remaining != 4 || resp.WindowSeconds != 60 || resp.Client != "10.1.1.1" {
		t.Fatalf("unexpected status: %+v", resp)
	}
}

func TestRateLimitStatus_Error(t *testing.T) {
	limiter := &stubLimiter{limit: 5, enabled: true, usageErr: errors.New("usage error")}
	handler := NewRateLimitHandler(limiter, newTestLogger())

	rr := httptest.NewRecorder()
	handler.Status(rr, httptest.NewRequest(http.MethodGet, "/api/rate-limit/status", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestRateLimitStatus_MethodNotAllowed(t *testing.T) {
	handler := NewRateLimitHandler(nil, newTestLogger())
	rr := httptest.NewRecorder()
	handler.Status(rr, httptest.NewRequest(http.MethodPost, "/api/rate-limit/status", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"interpretation-service/internal/logger"
	"interpretation-service/internal/services"
)

// RateLimitStatus ответ эндпоинта статуса лимита
type RateLimitStatus struct {
	Enabled       bool       `json:"enabled"`
	Limit         int64      `json:"limit,omitempty"`
	WindowSeconds int64      `json:"window_seconds,omitempty"`
	Used          int64      `json:"used"`
	Remaining     int64      `json:"remaining,omitempty"`
	ResetAt       *time.Time `json:"reset_at,omitempty"`
	Client        string     `json:"client,omitempty"`
}

// RateLimitHandler отвечает за статус лимита.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
	}
}

// Status возвращает текущие значения лимита для клиента.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.limiter == nil || !h.limiter.Enabled() {
		writeJSONResponse(w, http.StatusOK, RateLimitStatus{Enabled: false})
		return
	}

	client := services.ExtractClientIP(r)
	usage, err := h.limiter.Usage(r.Context(), client)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch rate limit usage")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
		return
	}

	writeJSONResponse(w, http.StatusOK, RateLimitStatus{
		Enabled:       true,
		Limit:         h.limiter.Limit(),
		WindowSeconds: int64(h.limiter.Window() / time.Second),
		Used:          usage.Used,
		Remaining:     usage.Remaining,
		ResetAt:       usage.ResetAt,
		Client:        client,
	})
}

// RateLimitMiddleware применяет rate limiting к хендлеру.
func RateLimitMiddleware(limiter MiddlewareLimiter, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		decision, err := limiter.Allow(r.Context(), services.ExtractClientIP(r))
		if err != nil {
			log.WithError(err).Error("Rate limiter failed")
			writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if !decision.ResetAt.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}

		if !decision.Allowed {
			if retry := time.Until(decision.ResetAt); retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			}
			writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next(w, r)
	}
}

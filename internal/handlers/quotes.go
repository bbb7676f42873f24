package handlers

import (
	"net/http"
	"time"

	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"
	"interpretation-service/internal/redis"
)

// QuoteHandler представляет обработчик для расчётов стоимости
type QuoteHandler struct {
	quoteService QuoteService
	producer     EventProducer
	redisClient  RedisClient
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewQuoteHandler создает новый обработчик расчётов. Нулевой cacheTTL заменяется значением по умолчанию.
func NewQuoteHandler(quoteService QuoteService, producer EventProducer, redisClient RedisClient, cacheTTL time.Duration, log *logger.Logger) *QuoteHandler {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &QuoteHandler{
		quoteService: quoteService,
		producer:     producer,
		redisClient:  redisClient,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// Calculate возвращает стоимость без сохранения расчёта
func (h *QuoteHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CalculateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.quoteService.Calculate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to calculate price")
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// CreateQuote рассчитывает и сохраняет расчёт
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateQuoteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quote, err := h.quoteService.CreateQuote(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create quote")
		return
	}

	// Расчёт уже сохранён, сбой Kafka или Redis клиенту не возвращается
	if err := h.producer.PublishQuoteCreated(quote); err != nil {
		h.log.WithError(err).WithField("quote_id", quote.ID).Error("Failed to publish quote created event")
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixQuote, quote.ID.String())
	if err := h.redisClient.Set(r.Context(), cacheKey, quote, h.cacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache quote")
	}

	writeJSONResponse(w, http.StatusCreated, quote)
}

// GetQuote получает расчёт по ID: сначала из кеша, затем из базы
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	quoteID, err := extractUUIDFromPath(r.URL.Path, "/api/quotes/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixQuote, quoteID.String())

	var cached models.Quote
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		h.log.WithField("quote_id", quoteID).Debug("Quote retrieved from cache")
		writeJSONResponse(w, http.StatusOK, &cached)
		return
	}

	quote, err := h.quoteService.GetQuote(r.Context(), quoteID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get quote")
		return
	}

	if err := h.redisClient.Set(r.Context(), cacheKey, quote, h.cacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache quote")
	}

	writeJSONResponse(w, http.StatusOK, quote)
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IBM/sarama"
)

// KafkaCheck проверяет доступность брокеров
type KafkaCheck func(brokers []string) error

// HealthHandler представляет обработчик для проверки здоровья системы
type HealthHandler struct {
	db           DBHealth
	redisClient  RedisHealth
	kafkaBrokers []string
	kafkaCheck   KafkaCheck
}

// NewHealthHandler создает новый обработчик здоровья. Без kafkaCheck используется CheckKafkaHealth.
func NewHealthHandler(db DBHealth, redisClient RedisHealth, kafkaBrokers []string, kafkaCheck KafkaCheck) *HealthHandler {
	if kafkaCheck == nil {
		kafkaCheck = CheckKafkaHealth
	}
	return &HealthHandler{
		db:           db,
		redisClient:  redisClient,
		kafkaBrokers: kafkaBrokers,
		kafkaCheck:   kafkaCheck,
	}
}

// HealthResponse представляет ответ проверки здоровья
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
}

const serviceVersion = "1.0.0"

var (
	startTime    = time.Now()
	errNoBrokers = errors.New("no brokers configured")
)

type componentCheck struct {
	name string
	run  func(ctx context.Context) error
}

func (h *HealthHandler) checks() []componentCheck {
	return []componentCheck{
		{"database", func(context.Context) error { return h.db.Health() }},
		{"redis", func(ctx context.Context) error { return h.redisClient.Health(ctx) }},
		{"kafka", func(context.Context) error { return h.kafkaCheck(h.kafkaBrokers) }},
	}
}

// Health проверяет состояние всех компонентов системы
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	overallStatus := "healthy"

	for _, c := range h.checks() {
		if err := c.run(ctx); err != nil {
			services[c.name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			services[c.name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, HealthResponse{
		Status:   overallStatus,
		Services: services,
		Version:  serviceVersion,
		Uptime:   time.Since(startTime).String(),
	})
}

// Readiness проверяет готовность приложения к обработке запросов
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, c := range h.checks() {
		if err := c.run(ctx); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, fmt.Sprintf("%s not ready", c.name))
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Liveness проверяет, что приложение живо
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(startTime).String(),
	})
}

// CheckKafkaHealth открывает короткоживущий клиент к брокерам; успешная загрузка метаданных считается здоровьем.
func CheckKafkaHealth(brokers []string) error {
	if len(brokers) == 0 {
		return errNoBrokers
	}

	cfg := sarama.NewConfig()
	cfg.ClientID = "interpretation-health"
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Net.ReadTimeout = 3 * time.Second
	cfg.Net.WriteTimeout = 3 * time.Second
	cfg.Metadata.Retry.Max = 1
	cfg.Metadata.Retry.Backoff = 250 * time.Millisecond
	cfg.Metadata.Full = false

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return fmt.Errorf("kafka unreachable: %w", err)
	}
	return client.Close()
}

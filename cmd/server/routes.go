package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"interpretation-service/internal/handlers"
	"interpretation-service/internal/kafka"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"
)

// routeHandlers набор HTTP обработчиков приложения
type routeHandlers struct {
	quotes    *handlers.QuoteHandler
	jobs      *handlers.JobHandler
	catalog   *handlers.CatalogHandler
	earnings  *handlers.EarningsHandler
	health    *handlers.HealthHandler
	rateLimit *handlers.RateLimitHandler
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(h routeHandlers, limiter handlers.MiddlewareLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(next http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(limiter, log, next))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(h.health.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(h.health.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(h.health.Liveness))

	// Quote endpoints
	mux.HandleFunc("/api/quotes", applyAPI(h.quotes.CreateQuote))
	mux.HandleFunc("/api/quotes/calculate", applyAPI(h.quotes.Calculate))
	mux.HandleFunc("/api/quotes/", applyAPI(h.quotes.GetQuote))

	// Job endpoints
	mux.HandleFunc("/api/jobs", applyAPI(handleJobsRoute(h.jobs)))
	mux.HandleFunc("/api/jobs/", applyAPI(handleJobRoute(h.jobs)))

	// Catalog endpoints
	mux.HandleFunc("/api/catalog/service-types", applyAPI(h.catalog.ServiceTypes))
	mux.HandleFunc("/api/catalog/languages", applyAPI(h.catalog.Languages))
	mux.HandleFunc("/api/catalog/workflow", applyAPI(h.catalog.Workflow))
	mux.HandleFunc("/api/catalog/onboarding", applyAPI(h.catalog.Onboarding))

	// Earnings endpoints
	mux.HandleFunc("/api/earnings/summary", applyAPI(h.earnings.GetSummary))
	mux.HandleFunc("/api/earnings/interpreters", applyAPI(h.earnings.GetInterpreterPayouts))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(h.rateLimit.Status))

	return mux
}

// handleJobsRoute обрабатывает маршруты для коллекции заявок
func handleJobsRoute(handler *handlers.JobHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetJobs(w, r)
		case http.MethodPost:
			handler.CreateJob(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleJobRoute обрабатывает маршруты для отдельной заявки
func handleJobRoute(handler *handlers.JobHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/status") {
			handler.UpdateJobStatus(w, r)
			return
		}
		handler.GetJob(w, r)
	}
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeQuoteCreated, func(ctx context.Context, event *models.Event) error {
		var data models.QuoteCreatedData
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		log.WithFields(map[string]interface{}{
			"event_id":     event.ID,
			"quote_id":     data.QuoteID,
			"service_type": data.ServiceType,
			"total":        data.Pricing.Total.String(),
		}).Info("Quote recorded")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeJobCreated, func(ctx context.Context, event *models.Event) error {
		var data models.JobCreatedData
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		log.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"job_id":     data.JobID,
			"language":   data.Language,
			"commission": data.Commission,
		}).Info("Job booked, waiting for interpreter")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeJobStatusChanged, func(ctx context.Context, event *models.Event) error {
		var data models.JobStatusChangedData
		if err := decodeEventData(event, &data); err != nil {
			return err
		}
		entry := log.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"job_id":     data.JobID,
			"old_status": data.OldStatus,
			"new_status": data.NewStatus,
		})
		if data.NewStatus == models.JobStatusCompleted {
			entry.Info("Job completed, interpreter payout due")
			return nil
		}
		entry.Info("Job status changed")
		return nil
	})
}

// decodeEventData приводит Data события, прочитанного из JSON, к конкретному типу.
func decodeEventData(event *models.Event, dst interface{}) error {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event.Type, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	return nil
}

// corsMiddleware добавляет CORS заголовки и отвечает на preflight запросы
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType тип события в Kafka
type EventType string

const (
	EventTypeQuoteCreated     EventType = "quote.created"
	EventTypeJobCreated       EventType = "job.created"
	EventTypeJobStatusChanged EventType = "job.status_changed"
)

// Event представляет событие системы
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// QuoteCreatedData данные события создания расчёта
type QuoteCreatedData struct {
	QuoteID     uuid.UUID     `json:"quote_id"`
	ServiceType ServiceType   `json:"service_type"`
	Pricing     PricingResult `json:"pricing"`
}

// JobCreatedData данные события создания заявки
type JobCreatedData struct {
	JobID               uuid.UUID   `json:"job_id"`
	ClientID            uuid.UUID   `json:"client_id"`
	ServiceType         ServiceType `json:"service_type"`
	Language            string      `json:"language"`
	TotalAmount         string      `json:"total_amount"`
	Commission          string      `json:"commission"`
	InterpreterEarnings string      `json:"interpreter_earnings"`
	Currency            string      `json:"currency"`
}

// JobStatusChangedData данные события смены статуса заявки
type JobStatusChangedData struct {
	JobID         uuid.UUID  `json:"job_id"`
	OldStatus     JobStatus  `json:"old_status"`
	NewStatus     JobStatus  `json:"new_status"`
	InterpreterID *uuid.UUID `json:"interpreter_id,omitempty"`
}

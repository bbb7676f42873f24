package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobStatus статус заявки на перевод
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Valid проверяет, что статус входит в жизненный цикл заявки
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusAccepted, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Job заявка клиента на услугу переводчика
type Job struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	ClientID            uuid.UUID       `json:"client_id" db:"client_id"`
	InterpreterID       *uuid.UUID      `json:"interpreter_id,omitempty" db:"interpreter_id"`
	ServiceType         ServiceType     `json:"service_type" db:"service_type"`
	Language            string          `json:"language" db:"language"`
	Quantity            float64         `json:"quantity" db:"quantity"`
	Modifiers           Modifiers       `json:"modifiers"`
	ScheduledAt         time.Time       `json:"scheduled_at" db:"scheduled_at"`
	Location            *string         `json:"location,omitempty" db:"location"`
	Notes               *string         `json:"notes,omitempty" db:"notes"`
	Status              JobStatus       `json:"status" db:"status"`
	Rate                decimal.Decimal `json:"rate" db:"rate"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	Commission          decimal.Decimal `json:"commission" db:"commission"`
	InterpreterEarnings decimal.Decimal `json:"interpreter_earnings" db:"interpreter_earnings"`
	Currency            string          `json:"currency" db:"currency"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// CreateJobRequest запрос на бронирование переводчика
type CreateJobRequest struct {
	ClientID    uuid.UUID   `json:"client_id"`
	ServiceType ServiceType `json:"service_type"`
	Language    string      `json:"language"`
	Quantity    float64     `json:"quantity"`
	Modifiers   Modifiers   `json:"modifiers"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Location    *string     `json:"location,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
}

// UpdateJobStatusRequest запрос на смену статуса заявки
type UpdateJobStatusRequest struct {
	Status        JobStatus  `json:"status"`
	InterpreterID *uuid.UUID `json:"interpreter_id,omitempty"`
}

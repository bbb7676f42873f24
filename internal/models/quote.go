package models

import (
	"time"

	"github.com/google/uuid"
)

// Quote сохранённый расчёт стоимости вместе с разбивкой на комиссию и выплату переводчику
type Quote struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	ServiceType ServiceType   `json:"service_type" db:"service_type"`
	Language    *string       `json:"language,omitempty" db:"language"`
	Quantity    float64       `json:"quantity" db:"quantity"`
	Modifiers   Modifiers     `json:"modifiers"`
	Pricing     PricingResult `json:"pricing"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// CreateQuoteRequest запрос на создание расчёта
type CreateQuoteRequest struct {
	ServiceType ServiceType `json:"service_type"`
	Quantity    float64     `json:"quantity"`
	Language    *string     `json:"language,omitempty"`
	Modifiers   Modifiers   `json:"modifiers"`
}

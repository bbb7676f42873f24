package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarningsGroupBy варианты группировки отчёта по периодам.
type EarningsGroupBy string

const (
	EarningsGroupNone  EarningsGroupBy = "none"
	EarningsGroupDay   EarningsGroupBy = "day"
	EarningsGroupWeek  EarningsGroupBy = "week"
	EarningsGroupMonth EarningsGroupBy = "month"
)

// Valid проверяет, что группировка поддерживается.
func (g EarningsGroupBy) Valid() bool {
	switch g {
	case EarningsGroupNone, EarningsGroupDay, EarningsGroupWeek, EarningsGroupMonth:
		return true
	}
	return false
}

// EarningsFilter интервал и параметры агрегации по завершённым заявкам.
type EarningsFilter struct {
	From             time.Time
	To               time.Time
	GroupBy          EarningsGroupBy
	InterpreterLimit int
}

// EarningsSummary выручка платформы и выплаты переводчикам за период.
type EarningsSummary struct {
	From                time.Time             `json:"from"`
	To                  time.Time             `json:"to"`
	JobsCount           int                   `json:"jobs_count"`
	Gross               decimal.Decimal       `json:"gross"`
	Commission          decimal.Decimal       `json:"commission"`
	InterpreterEarnings decimal.Decimal       `json:"interpreter_earnings"`
	ByServiceType       []ServiceTypeEarnings `json:"by_service_type"`
	Periods             []EarningsPeriod      `json:"periods,omitempty"`
	GeneratedAt         time.Time             `json:"generated_at"`
	GroupBy             string                `json:"group_by,omitempty"`
}

// EarningsPeriod агрегаты за один интервал группировки.
type EarningsPeriod struct {
	Period              string          `json:"period"`
	JobsCount           int             `json:"jobs_count"`
	Gross               decimal.Decimal `json:"gross"`
	Commission          decimal.Decimal `json:"commission"`
	InterpreterEarnings decimal.Decimal `json:"interpreter_earnings"`
}

// ServiceTypeEarnings агрегаты по типу услуги.
type ServiceTypeEarnings struct {
	ServiceType ServiceType     `json:"service_type"`
	JobsCount   int             `json:"jobs_count"`
	Gross       decimal.Decimal `json:"gross"`
	Commission  decimal.Decimal `json:"commission"`
}

// InterpreterPayout сумма к выплате переводчику за период.
type InterpreterPayout struct {
	InterpreterID uuid.UUID       `json:"interpreter_id"`
	JobsCount     int             `json:"jobs_count"`
	Gross         decimal.Decimal `json:"gross"`
	Earnings      decimal.Decimal `json:"earnings"`
	LastCompleted *time.Time      `json:"last_completed_at,omitempty"`
}

package handlers

import (
	"context"
	"time"

	"interpretation-service/internal/models"
	"interpretation-service/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ----- Quotes -----

type QuoteService interface {
	Calculate(ctx context.Context, req *models.CalculateRequest) (*models.PricingResult, error)
	CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
}

// ----- Jobs -----

type JobService interface {
	CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	GetJobs(ctx context.Context, status *models.JobStatus, interpreterID *uuid.UUID, limit, offset int) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, req *models.UpdateJobStatusRequest) (models.JobStatus, error)
}

// ----- Catalog -----

type RateCardProvider interface {
	ServiceTypes() []models.ServiceType
	RatePlan(serviceType models.ServiceType) (models.RatePlan, error)
	CommissionRate(serviceType models.ServiceType) (decimal.Decimal, error)
	HasExplicitCommission(serviceType models.ServiceType) bool
	Surcharges() services.Surcharges
	Currency() string
}

// ----- Earnings -----

type EarningsProvider interface {
	GetSummary(ctx context.Context, filter *models.EarningsFilter) (*models.EarningsSummary, error)
	GetInterpreterPayouts(ctx context.Context, filter *models.EarningsFilter) ([]*models.InterpreterPayout, error)
}

// ----- Events & cache -----

type EventProducer interface {
	PublishQuoteCreated(quote *models.Quote) error
	PublishJobCreated(job *models.Job) error
	PublishJobStatusChanged(jobID uuid.UUID, oldStatus, newStatus models.JobStatus, interpreterID *uuid.UUID) error
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ----- Rate limit -----

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, client string) (services.RateDecision, error)
	Enabled() bool
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, client string) (services.RateUsage, error)
	Limit() int64
	Window() time.Duration
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}

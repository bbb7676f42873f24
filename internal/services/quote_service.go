package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/database"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"

	"github.com/google/uuid"
)

const quoteColumns = `id, service_type, language, quantity, is_rush, is_after_hours, is_holiday, travel_miles,
		       unit, billed_quantity, unit_rate, travel_fee, commission_rate, subtotal, commission,
		       interpreter_earnings, total, currency, created_at`

// QuoteService сохраняет расчёты стоимости вместе с полной разбивкой
type QuoteService struct {
	db      *database.DB
	log     *logger.Logger
	pricing *PricingService
}

// NewQuoteService создает новый экземпляр сервиса расчётов
func NewQuoteService(db *database.DB, log *logger.Logger, pricing *PricingService) *QuoteService {
	return &QuoteService{
		db:      db,
		log:     log,
		pricing: pricing,
	}
}

// Calculate считает стоимость без сохранения
func (s *QuoteService) Calculate(ctx context.Context, req *models.CalculateRequest) (*models.PricingResult, error) {
	if req == nil {
		return nil, apperror.Validation("request body is required", nil)
	}
	return s.pricing.CalculateServiceCost(req.ServiceType, req.Quantity, req.Modifiers)
}

// CreateQuote рассчитывает стоимость и сохраняет расчёт
func (s *QuoteService) CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error) {
	if req == nil {
		return nil, apperror.Validation("request body is required", nil)
	}

	var language *string
	if req.Language != nil && strings.TrimSpace(*req.Language) != "" {
		lang, ok := models.LookupLanguage(*req.Language)
		if !ok {
			return nil, apperror.InvalidField("language", fmt.Sprintf("unsupported language: %q", *req.Language), nil)
		}
		language = &lang.Code
	}

	pricing, err := s.pricing.CalculateServiceCost(req.ServiceType, req.Quantity, req.Modifiers)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		ID:          uuid.New(),
		ServiceType: req.ServiceType,
		Language:    language,
		Quantity:    req.Quantity,
		Modifiers:   req.Modifiers,
		Pricing:     *pricing,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	p := quote.Pricing
	_, err = s.db.ExecContext(ctx, query,
		quote.ID, quote.ServiceType, quote.Language, quote.Quantity,
		quote.Modifiers.IsRush, quote.Modifiers.IsAfterHours, quote.Modifiers.IsHoliday, quote.Modifiers.TravelMiles,
		p.Unit, p.BilledQuantity, p.UnitRate, p.TravelFee, p.CommissionRate, p.Subtotal, p.Commission,
		p.InterpreterEarnings, p.Total, p.Currency, quote.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"quote_id":     quote.ID,
		"service_type": quote.ServiceType,
		"subtotal":     p.Subtotal.String(),
		"commission":   p.Commission.String(),
	}).Info("Quote created successfully")

	return quote, nil
}

// GetQuote получает расчёт по ID
func (s *QuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	q := &models.Quote{}
	p := &q.Pricing
	err := s.db.QueryRowContext(ctx, query, quoteID).Scan(
		&q.ID, &q.ServiceType, &q.Language, &q.Quantity,
		&q.Modifiers.IsRush, &q.Modifiers.IsAfterHours, &q.Modifiers.IsHoliday, &q.Modifiers.TravelMiles,
		&p.Unit, &p.BilledQuantity, &p.UnitRate, &p.TravelFee, &p.CommissionRate, &p.Subtotal, &p.Commission,
		&p.InterpreterEarnings, &p.Total, &p.Currency, &q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("quote not found", err)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	p.ServiceType = q.ServiceType

	return q, nil
}

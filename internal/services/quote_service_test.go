package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var quoteRowColumns = []string{
	"id", "service_type", "language", "quantity", "is_rush", "is_after_hours", "is_holiday", "travel_miles",
	"unit", "billed_quantity", "unit_rate", "travel_fee", "commission_rate", "subtotal", "commission",
	"interpreter_earnings", "total", "currency", "created_at",
}

func TestQuoteService_CreateQuote_PersistsBreakdown(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

	lang := " ES "
	req := &models.CreateQuoteRequest{
		ServiceType: models.ServiceTypeInPersonLegal,
		Quantity:    3,
		Language:    &lang,
		Modifiers:   models.Modifiers{IsRush: true, IsAfterHours: true, TravelMiles: 40},
	}

	mock.ExpectExec("INSERT INTO quotes").
		WithArgs(sqlmock.AnyArg(), models.ServiceTypeInPersonLegal, "es", 3.0,
			true, true, false, 40.0,
			models.UnitHour, dec("3"), dec("95"), dec("9.75"), dec("0.25"), dec("544.13"), dec("136.03"),
			dec("408.10"), dec("544.13"), "USD", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	quote, err := service.CreateQuote(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if quote.ID == uuid.Nil || quote.Language == nil || *quote.Language != "es" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	assertMoney(t, "earnings", quote.Pricing.InterpreterEarnings, "408.10")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuoteService_CreateQuote_ValidationErrors(t *testing.T) {
	unknownLang := "xx"
	tests := []struct {
		name string
		req  *models.CreateQuoteRequest
		want error
	}{
		{"nil request", nil, nil},
		{"unknown language", &models.CreateQuoteRequest{ServiceType: models.ServiceTypePhone, Quantity: 5, Language: &unknownLang}, nil},
		{"unknown service type", &models.CreateQuoteRequest{ServiceType: "telepathy", Quantity: 5}, ErrUnknownServiceType},
		{"negative quantity", &models.CreateQuoteRequest{ServiceType: models.ServiceTypePhone, Quantity: -1}, ErrInvalidQuantity},
		{"negative travel", &models.CreateQuoteRequest{ServiceType: models.ServiceTypeInPersonGen, Quantity: 2, Modifiers: models.Modifiers{TravelMiles: -3}}, ErrInvalidTravelDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

			_, err := service.CreateQuote(context.Background(), tt.req)
			if !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("no queries expected: %v", err)
			}
		})
	}
}

func TestQuoteService_CreateQuote_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

	mock.ExpectExec("INSERT INTO quotes").WillReturnError(errors.New("connection reset"))

	_, err := service.CreateQuote(context.Background(), &models.CreateQuoteRequest{ServiceType: models.ServiceTypePhone, Quantity: 12})
	if err == nil || apperror.IsClientError(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestQuoteService_GetQuote(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

	quoteID := uuid.New()
	createdAt := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM quotes WHERE id").
		WithArgs(quoteID).
		WillReturnRows(sqlmock.NewRows(quoteRowColumns).AddRow(
			quoteID.String(), "phone_interpretation", nil, 5.0, false, false, false, 0.0,
			"minute", "10", "2.50", "0", "0.20", "25.00", "5.00", "20.00", "25.00", "USD", createdAt,
		))

	quote, err := service.GetQuote(context.Background(), quoteID)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if quote.ID != quoteID || quote.Language != nil || quote.Pricing.ServiceType != models.ServiceTypePhone {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Pricing.Unit != models.UnitMinute {
		t.Fatalf("unexpected unit %s", quote.Pricing.Unit)
	}
	assertMoney(t, "subtotal", quote.Pricing.Subtotal, "25")
	assertMoney(t, "commission", quote.Pricing.Commission, "5")
	assertMoney(t, "earnings", quote.Pricing.InterpreterEarnings, "20")
}

func TestQuoteService_GetQuote_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

	quoteID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM quotes WHERE id").
		WithArgs(quoteID).
		WillReturnError(sql.ErrNoRows)

	if _, err := service.GetQuote(context.Background(), quoteID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuoteService_Calculate(t *testing.T) {
	db, mock := newMockDB(t)
	service := NewQuoteService(db, newTestLogger(), newTestPricingService(t))

	res, err := service.Calculate(context.Background(), &models.CalculateRequest{
		ServiceType: models.ServiceTypeInPersonMed,
		Quantity:    2,
		Modifiers:   models.Modifiers{IsHoliday: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertMoney(t, "subtotal", res.Subtotal, "255.00")

	if _, err := service.Calculate(context.Background(), nil); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for nil request, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("calculate must not touch the database: %v", err)
	}
}

package services

import (
	"fmt"
	"math"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/models"

	"github.com/shopspring/decimal"
)

// PricingService рассчитывает стоимость услуги и делит её на комиссию платформы и выплату переводчику.
// Не хранит состояния, безопасен для конкурентного использования.
type PricingService struct {
	card *RateCard
}

// NewPricingService создаёт калькулятор поверх тарифной сетки.
func NewPricingService(card *RateCard) *PricingService {
	return &PricingService{card: card}
}

// RateCard возвращает тарифную сетку калькулятора.
func (s *PricingService) RateCard() *RateCard {
	return s.card
}

// CalculateServiceCost считает стоимость: минимальный объём, последовательные множители,
// оплата дороги, комиссия. Округление до минимальной денежной единицы выполняется один раз в конце.
func (s *PricingService) CalculateServiceCost(serviceType models.ServiceType, quantity float64, mods models.Modifiers) (*models.PricingResult, error) {
	plan, err := s.card.RatePlan(serviceType)
	if err != nil {
		return nil, err
	}
	if !isFiniteNonNegative(quantity) {
		return nil, apperror.InvalidField("quantity", fmt.Sprintf("quantity must be a finite non-negative number, got %v", quantity), ErrInvalidQuantity)
	}
	if !isFiniteNonNegative(mods.TravelMiles) {
		return nil, apperror.InvalidField("travel_miles", fmt.Sprintf("travel_miles must be a finite non-negative number, got %v", mods.TravelMiles), ErrInvalidTravelDistance)
	}
	commissionRate, err := s.card.CommissionRate(serviceType)
	if err != nil {
		return nil, err
	}

	surcharges := s.card.Surcharges()

	billed := decimal.Max(decimal.NewFromFloat(quantity), plan.Minimum)
	subtotal := plan.Rate.Mul(billed)

	// Порядок фиксирован: rush, after-hours, holiday.
	if mods.IsRush {
		subtotal = subtotal.Mul(surcharges.RushMultiplier)
	}
	if mods.IsAfterHours {
		subtotal = subtotal.Mul(surcharges.AfterHoursMultiplier)
	}
	if mods.IsHoliday {
		subtotal = subtotal.Mul(surcharges.HolidayMultiplier)
	}

	travelFee := decimal.Zero
	if excess := decimal.NewFromFloat(mods.TravelMiles).Sub(surcharges.FreeTravelRadius); excess.IsPositive() {
		travelFee = excess.Mul(surcharges.PerMileRate)
	}
	subtotal = subtotal.Add(travelFee)

	commission := subtotal.Mul(commissionRate)

	places := models.CurrencyPlaces(s.card.Currency())
	roundedSubtotal := subtotal.Round(places)
	roundedCommission := commission.Round(places)
	// Выплата считается от округлённых сумм, чтобы commission + earnings == subtotal без остатка.
	earnings := roundedSubtotal.Sub(roundedCommission)

	return &models.PricingResult{
		ServiceType:         serviceType,
		Unit:                plan.Unit,
		BilledQuantity:      billed,
		UnitRate:            plan.Rate,
		TravelFee:           travelFee.Round(places),
		CommissionRate:      commissionRate,
		Subtotal:            roundedSubtotal,
		Commission:          roundedCommission,
		InterpreterEarnings: earnings,
		Total:               roundedSubtotal,
		Currency:            s.card.Currency(),
	}, nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

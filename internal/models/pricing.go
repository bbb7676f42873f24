package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ServiceType описывает тарифицируемую категорию услуг перевода
type ServiceType string

const (
	ServiceTypePhone          ServiceType = "phone_interpretation"
	ServiceTypeVideo          ServiceType = "video_interpretation"
	ServiceTypeInPersonGen    ServiceType = "in_person_general"
	ServiceTypeInPersonLegal  ServiceType = "in_person_legal"
	ServiceTypeInPersonMed    ServiceType = "in_person_medical"
	ServiceTypeAIAvatar       ServiceType = "ai_avatar_session"
	ServiceTypeDocTranslation ServiceType = "document_translation"
)

// IsInPerson сообщает, что услуга оказывается на выезде и может включать оплату дороги
func (t ServiceType) IsInPerson() bool {
	switch t {
	case ServiceTypeInPersonGen, ServiceTypeInPersonLegal, ServiceTypeInPersonMed:
		return true
	default:
		return false
	}
}

// BillingUnit единица тарификации
type BillingUnit string

const (
	UnitMinute BillingUnit = "minute"
	UnitHour   BillingUnit = "hour"
	UnitWord   BillingUnit = "word"
)

// Valid проверяет, что единица входит в поддерживаемый набор
func (u BillingUnit) Valid() bool {
	return u == UnitMinute || u == UnitHour || u == UnitWord
}

// RatePlan тариф одной услуги: ставка за единицу и минимальное оплачиваемое количество
type RatePlan struct {
	Unit    BillingUnit     `json:"unit"`
	Rate    decimal.Decimal `json:"rate"`
	Minimum decimal.Decimal `json:"minimum"`
}

// Modifiers ситуационные надбавки к заказу
type Modifiers struct {
	IsRush       bool    `json:"is_rush"`
	IsAfterHours bool    `json:"is_after_hours"`
	IsHoliday    bool    `json:"is_holiday"`
	TravelMiles  float64 `json:"travel_miles"`
}

// PricingResult итог расчёта стоимости. Total совпадает с Subtotal: комиссия
// удерживается из суммы клиента, а не добавляется к ней.
type PricingResult struct {
	ServiceType         ServiceType     `json:"service_type"`
	Unit                BillingUnit     `json:"unit"`
	BilledQuantity      decimal.Decimal `json:"billed_quantity"`
	UnitRate            decimal.Decimal `json:"unit_rate"`
	TravelFee           decimal.Decimal `json:"travel_fee"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Commission          decimal.Decimal `json:"commission"`
	InterpreterEarnings decimal.Decimal `json:"interpreter_earnings"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
}

// CalculateRequest запрос на расчёт стоимости без сохранения
type CalculateRequest struct {
	ServiceType ServiceType `json:"service_type"`
	Quantity    float64     `json:"quantity"`
	Modifiers   Modifiers   `json:"modifiers"`
}

// minorUnits количество знаков после запятой для валют, отличных от двух
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
}

// CurrencyPlaces возвращает число знаков минимальной денежной единицы валюты
func CurrencyPlaces(currency string) int32 {
	if p, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return p
	}
	return 2
}

// FormatAmount форматирует сумму с точностью валюты
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(CurrencyPlaces(currency))
}

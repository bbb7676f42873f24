package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"interpretation-service/internal/apperror"
	"interpretation-service/internal/config"
	"interpretation-service/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownServiceType    = errors.New("unknown service type")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidTravelDistance = errors.New("invalid travel distance")
	ErrInvalidRateCard       = errors.New("invalid rate card")
)

// DefaultCommissionRate применяется к известной услуге без явной записи в таблице комиссий.
var DefaultCommissionRate = decimal.RequireFromString("0.20")

const defaultCurrency = "USD"

// Surcharges общие надбавки: множители и оплата дороги за пределами бесплатного радиуса.
type Surcharges struct {
	RushMultiplier       decimal.Decimal `json:"rush_multiplier"`
	AfterHoursMultiplier decimal.Decimal `json:"after_hours_multiplier"`
	HolidayMultiplier    decimal.Decimal `json:"holiday_multiplier"`
	FreeTravelRadius     decimal.Decimal `json:"free_travel_radius"`
	PerMileRate          decimal.Decimal `json:"per_mile_rate"`
}

// RateCard неизменяемая тарифная сетка: тарифы по типам услуг, комиссии платформы и надбавки.
// Собирается один раз при старте и передаётся калькулятору явно.
type RateCard struct {
	plans       map[models.ServiceType]models.RatePlan
	commissions map[models.ServiceType]decimal.Decimal
	surcharges  Surcharges
	currency    string
}

// NewRateCard проверяет и копирует таблицы.
func NewRateCard(plans map[models.ServiceType]models.RatePlan, commissions map[models.ServiceType]decimal.Decimal, surcharges Surcharges, currency string) (*RateCard, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no rate plans configured", ErrInvalidRateCard)
	}

	card := &RateCard{
		plans:       make(map[models.ServiceType]models.RatePlan, len(plans)),
		commissions: make(map[models.ServiceType]decimal.Decimal, len(commissions)),
		surcharges:  surcharges,
		currency:    strings.ToUpper(strings.TrimSpace(currency)),
	}
	if card.currency == "" {
		card.currency = defaultCurrency
	}

	for st, plan := range plans {
		if st == "" {
			return nil, fmt.Errorf("%w: empty service type", ErrInvalidRateCard)
		}
		if !plan.Unit.Valid() {
			return nil, fmt.Errorf("%w: %s has unsupported unit %q", ErrInvalidRateCard, st, plan.Unit)
		}
		if !plan.Rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s rate must be positive", ErrInvalidRateCard, st)
		}
		if plan.Minimum.IsNegative() {
			return nil, fmt.Errorf("%w: %s minimum must be non-negative", ErrInvalidRateCard, st)
		}
		card.plans[st] = plan
	}

	for st, rate := range commissions {
		if _, ok := card.plans[st]; !ok {
			return nil, fmt.Errorf("%w: commission for %s without a rate plan", ErrInvalidRateCard, st)
		}
		if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: %s commission must be in (0, 1)", ErrInvalidRateCard, st)
		}
		card.commissions[st] = rate
	}

	if err := surcharges.validate(); err != nil {
		return nil, err
	}

	return card, nil
}

func (s Surcharges) validate() error {
	multipliers := map[string]decimal.Decimal{
		"rush":        s.RushMultiplier,
		"after-hours": s.AfterHoursMultiplier,
		"holiday":     s.HolidayMultiplier,
	}
	for name, m := range multipliers {
		if !m.IsPositive() {
			return fmt.Errorf("%w: %s multiplier must be positive", ErrInvalidRateCard, name)
		}
	}
	if s.FreeTravelRadius.IsNegative() {
		return fmt.Errorf("%w: free travel radius must be non-negative", ErrInvalidRateCard)
	}
	if s.PerMileRate.IsNegative() {
		return fmt.Errorf("%w: per-mile rate must be non-negative", ErrInvalidRateCard)
	}
	return nil
}

// DefaultSurcharges значения надбавок по умолчанию.
func DefaultSurcharges() Surcharges {
	return Surcharges{
		RushMultiplier:       decimal.RequireFromString("1.5"),
		AfterHoursMultiplier: decimal.RequireFromString("1.25"),
		HolidayMultiplier:    decimal.RequireFromString("1.5"),
		FreeTravelRadius:     decimal.NewFromInt(25),
		PerMileRate:          decimal.RequireFromString("0.65"),
	}
}

// SurchargesFromConfig переводит настройки из окружения в decimal.
func SurchargesFromConfig(cfg *config.PricingConfig) Surcharges {
	return Surcharges{
		RushMultiplier:       decimal.NewFromFloat(cfg.RushMultiplier),
		AfterHoursMultiplier: decimal.NewFromFloat(cfg.AfterHoursMultiplier),
		HolidayMultiplier:    decimal.NewFromFloat(cfg.HolidayMultiplier),
		FreeTravelRadius:     decimal.NewFromFloat(cfg.FreeTravelRadius),
		PerMileRate:          decimal.NewFromFloat(cfg.PerMileRate),
	}
}

func defaultPlans() map[models.ServiceType]models.RatePlan {
	plan := func(unit models.BillingUnit, rate, minimum string) models.RatePlan {
		return models.RatePlan{
			Unit:    unit,
			Rate:    decimal.RequireFromString(rate),
			Minimum: decimal.RequireFromString(minimum),
		}
	}
	return map[models.ServiceType]models.RatePlan{
		models.ServiceTypePhone:          plan(models.UnitMinute, "2.50", "10"),
		models.ServiceTypeVideo:          plan(models.UnitMinute, "3.00", "15"),
		models.ServiceTypeInPersonGen:    plan(models.UnitHour, "75.00", "2"),
		models.ServiceTypeInPersonLegal:  plan(models.UnitHour, "95.00", "2"),
		models.ServiceTypeInPersonMed:    plan(models.UnitHour, "85.00", "2"),
		models.ServiceTypeAIAvatar:       plan(models.UnitMinute, "1.00", "5"),
		models.ServiceTypeDocTranslation: plan(models.UnitWord, "0.12", "50"),
	}
}

// AI-аватар намеренно без записи: для него действует DefaultCommissionRate.
func defaultCommissions() map[models.ServiceType]decimal.Decimal {
	return map[models.ServiceType]decimal.Decimal{
		models.ServiceTypePhone:          decimal.RequireFromString("0.20"),
		models.ServiceTypeVideo:          decimal.RequireFromString("0.20"),
		models.ServiceTypeInPersonGen:    decimal.RequireFromString("0.25"),
		models.ServiceTypeInPersonLegal:  decimal.RequireFromString("0.25"),
		models.ServiceTypeInPersonMed:    decimal.RequireFromString("0.25"),
		models.ServiceTypeDocTranslation: decimal.RequireFromString("0.30"),
	}
}

// DefaultRateCard встроенная тарифная сетка с заданными надбавками.
func DefaultRateCard(surcharges Surcharges, currency string) (*RateCard, error) {
	return NewRateCard(defaultPlans(), defaultCommissions(), surcharges, currency)
}

type rateCardFile struct {
	Plans       map[models.ServiceType]models.RatePlan  `json:"plans"`
	Commissions map[models.ServiceType]decimal.Decimal `json:"commissions"`
}

// LoadRateCardFile читает тарифы и комиссии из JSON файла. Надбавки и валюта приходят из конфигурации.
func LoadRateCardFile(path string, surcharges Surcharges, currency string) (*RateCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate card %s: %w", path, err)
	}

	var f rateCardFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rate card %s: %w", path, err)
	}

	return NewRateCard(f.Plans, f.Commissions, surcharges, currency)
}

// NewRateCardFromConfig собирает сетку из файла, если он задан, иначе из встроенных таблиц.
func NewRateCardFromConfig(cfg *config.PricingConfig) (*RateCard, error) {
	surcharges := SurchargesFromConfig(cfg)
	if cfg.RateCardFile != "" {
		return LoadRateCardFile(cfg.RateCardFile, surcharges, cfg.Currency)
	}
	return DefaultRateCard(surcharges, cfg.Currency)
}

// RatePlan возвращает тариф услуги.
func (c *RateCard) RatePlan(serviceType models.ServiceType) (models.RatePlan, error) {
	plan, ok := c.plans[serviceType]
	if !ok {
		return models.RatePlan{}, unknownServiceType(serviceType)
	}
	return plan, nil
}

// CommissionRate возвращает долю платформы. Для известной услуги без явной
// записи возвращается DefaultCommissionRate.
func (c *RateCard) CommissionRate(serviceType models.ServiceType) (decimal.Decimal, error) {
	if _, ok := c.plans[serviceType]; !ok {
		return decimal.Zero, unknownServiceType(serviceType)
	}
	if rate, ok := c.commissions[serviceType]; ok {
		return rate, nil
	}
	return DefaultCommissionRate, nil
}

// HasExplicitCommission сообщает, задана ли комиссия для услуги явно.
func (c *RateCard) HasExplicitCommission(serviceType models.ServiceType) bool {
	_, ok := c.commissions[serviceType]
	return ok
}

// Surcharges возвращает общие надбавки.
func (c *RateCard) Surcharges() Surcharges {
	return c.surcharges
}

// Currency возвращает код валюты.
func (c *RateCard) Currency() string {
	return c.currency
}

// ServiceTypes возвращает известные услуги в алфавитном порядке.
func (c *RateCard) ServiceTypes() []models.ServiceType {
	types := make([]models.ServiceType, 0, len(c.plans))
	for st := range c.plans {
		types = append(types, st)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func unknownServiceType(serviceType models.ServiceType) error {
	return apperror.InvalidField("service_type", fmt.Sprintf("unknown service type: %q", string(serviceType)), ErrUnknownServiceType)
}

package handlers

import (
	"net/http"

	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"
	"interpretation-service/internal/services"

	"github.com/shopspring/decimal"
)

// ServiceTypeInfo описание услуги в каталоге
type ServiceTypeInfo struct {
	ServiceType       models.ServiceType `json:"service_type"`
	Unit              models.BillingUnit `json:"unit"`
	Rate              decimal.Decimal    `json:"rate"`
	Minimum           decimal.Decimal    `json:"minimum"`
	CommissionRate    decimal.Decimal    `json:"commission_rate"`
	DefaultCommission bool               `json:"default_commission"`
	InPerson          bool               `json:"in_person"`
}

// ServiceTypesResponse ответ каталога услуг
type ServiceTypesResponse struct {
	Currency     string              `json:"currency"`
	ServiceTypes []ServiceTypeInfo   `json:"service_types"`
	Surcharges   services.Surcharges `json:"surcharges"`
}

// CatalogHandler отдаёт справочные данные: услуги, языки, шаги бронирования и подключения
type CatalogHandler struct {
	rateCard RateCardProvider
	log      *logger.Logger
}

// NewCatalogHandler создает обработчик каталога
func NewCatalogHandler(rateCard RateCardProvider, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{rateCard: rateCard, log: log}
}

// ServiceTypes возвращает услуги с тарифами и комиссиями
func (h *CatalogHandler) ServiceTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	types := h.rateCard.ServiceTypes()
	infos := make([]ServiceTypeInfo, 0, len(types))
	for _, st := range types {
		plan, err := h.rateCard.RatePlan(st)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to build service catalog")
			return
		}
		commission, err := h.rateCard.CommissionRate(st)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to build service catalog")
			return
		}
		infos = append(infos, ServiceTypeInfo{
			ServiceType:       st,
			Unit:              plan.Unit,
			Rate:              plan.Rate,
			Minimum:           plan.Minimum,
			CommissionRate:    commission,
			DefaultCommission: !h.rateCard.HasExplicitCommission(st),
			InPerson:          st.IsInPerson(),
		})
	}

	writeJSONResponse(w, http.StatusOK, ServiceTypesResponse{
		Currency:     h.rateCard.Currency(),
		ServiceTypes: infos,
		Surcharges:   h.rateCard.Surcharges(),
	})
}

// Languages возвращает поддерживаемые языки, с фильтром по tier
func (h *CatalogHandler) Languages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	languages := models.Languages()
	if tier := models.LanguageTier(r.URL.Query().Get("tier")); tier != "" {
		filtered := languages[:0]
		for _, l := range languages {
			if l.Tier == tier {
				filtered = append(filtered, l)
			}
		}
		languages = filtered
	}

	writeJSONResponse(w, http.StatusOK, languages)
}

// Workflow возвращает шаги бронирования
func (h *CatalogHandler) Workflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSONResponse(w, http.StatusOK, models.BookingWorkflow())
}

// Onboarding возвращает этапы подключения переводчика
func (h *CatalogHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSONResponse(w, http.StatusOK, models.OnboardingPhases())
}

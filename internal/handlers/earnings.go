package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"

	"github.com/shopspring/decimal"
)

const (
	defaultMaxRangeDays             = 365
	defaultInterpreterLimitFallback = 50
	dateLayout                      = "2006-01-02"
)

// EarningsHandler обрабатывает отчёты по комиссии платформы и выплатам переводчикам.
type EarningsHandler struct {
	service EarningsProvider
	log     *logger.Logger
	cfg     *config.EarningsConfig
}

// NewEarningsHandler создает новый обработчик отчётов.
func NewEarningsHandler(service EarningsProvider, log *logger.Logger, cfg *config.EarningsConfig) *EarningsHandler {
	return &EarningsHandler{
		service: service,
		log:     log,
		cfg:     cfg,
	}
}

// GetSummary возвращает итоги за период, JSON или CSV.
func (h *EarningsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter, format, err := parseEarningsFilter(r, h.cfg, time.Now().UTC())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), earningsTimeout(h.cfg))
	defer cancel()

	summary, err := h.service.GetSummary(ctx, filter)
	if err != nil {
		h.log.WithError(err).Error("Failed to load earnings summary")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load earnings")
		return
	}

	if format == "csv" {
		if err := writeSummaryCSV(w, summary); err != nil {
			h.log.WithError(err).Warn("Failed to stream earnings CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, summary)
}

// GetInterpreterPayouts возвращает выплаты по переводчикам, JSON или CSV.
func (h *EarningsHandler) GetInterpreterPayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter, format, err := parseEarningsFilter(r, h.cfg, time.Now().UTC())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), earningsTimeout(h.cfg))
	defer cancel()

	payouts, err := h.service.GetInterpreterPayouts(ctx, filter)
	if err != nil {
		h.log.WithError(err).Error("Failed to load interpreter payouts")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load earnings")
		return
	}

	if format == "csv" {
		if err := writePayoutsCSV(w, payouts); err != nil {
			h.log.WithError(err).Warn("Failed to stream payouts CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, payouts)
}

func parseEarningsFilter(r *http.Request, cfg *config.EarningsConfig, now time.Time) (*models.EarningsFilter, string, error) {
	query := r.URL.Query()

	maxRangeDays := defaultMaxRangeDays
	if cfg != nil && cfg.MaxRangeDays > 0 {
		maxRangeDays = cfg.MaxRangeDays
	}

	to := endOfDay(now)
	if v := query.Get("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'to' date, expected YYYY-MM-DD")
		}
		to = endOfDay(parsed)
	}

	from := startOfDay(to.AddDate(0, 0, -maxRangeDays+1))
	if v := query.Get("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = startOfDay(parsed)
	}

	if from.After(to) {
		return nil, "", fmt.Errorf("'from' date must be before 'to' date")
	}
	if from.Before(startOfDay(to.AddDate(0, 0, -maxRangeDays+1))) {
		return nil, "", fmt.Errorf("date range too wide, max %d days", maxRangeDays)
	}

	groupBy := models.EarningsGroupNone
	if cfg != nil {
		if g := models.EarningsGroupBy(strings.ToLower(cfg.DefaultGroupBy)); g.Valid() {
			groupBy = g
		}
	}
	if v := strings.ToLower(query.Get("group_by")); v != "" {
		groupBy = models.EarningsGroupBy(v)
		if !groupBy.Valid() {
			return nil, "", fmt.Errorf("group_by must be one of: day, week, month, none")
		}
	}

	limitDefault := defaultInterpreterLimitFallback
	if cfg != nil && cfg.DefaultInterpreterLimit > 0 {
		limitDefault = cfg.DefaultInterpreterLimit
	}

	format := strings.ToLower(query.Get("format"))
	if format != "" && format != "json" && format != "csv" {
		return nil, "", fmt.Errorf("format must be json or csv")
	}

	return &models.EarningsFilter{
		From:             from,
		To:               to,
		GroupBy:          groupBy,
		InterpreterLimit: parseIntWithDefault(query.Get("limit"), limitDefault),
	}, format, nil
}

func parseIntWithDefault(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func writeSummaryCSV(w http.ResponseWriter, s *models.EarningsSummary) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=earnings.csv")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"section", "period", "jobs_count", "gross", "commission", "interpreter_earnings"})
	rangeLabel := fmt.Sprintf("%s..%s", s.From.Format(dateLayout), s.To.Format(dateLayout))
	_ = writer.Write([]string{"summary", rangeLabel, strconv.Itoa(s.JobsCount), formatMoney(s.Gross), formatMoney(s.Commission), formatMoney(s.InterpreterEarnings)})

	for _, p := range s.Periods {
		_ = writer.Write([]string{"period", p.Period, strconv.Itoa(p.JobsCount), formatMoney(p.Gross), formatMoney(p.Commission), formatMoney(p.InterpreterEarnings)})
	}

	_ = writer.Write([]string{})
	_ = writer.Write([]string{"section", "service_type", "jobs_count", "gross", "commission"})
	for _, st := range s.ByServiceType {
		_ = writer.Write([]string{"service_type", string(st.ServiceType), strconv.Itoa(st.JobsCount), formatMoney(st.Gross), formatMoney(st.Commission)})
	}

	writer.Flush()
	return writer.Error()
}

func writePayoutsCSV(w http.ResponseWriter, payouts []*models.InterpreterPayout) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=payouts.csv")
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"interpreter_id", "jobs_count", "gross", "earnings", "last_completed_at"})

	for _, p := range payouts {
		last := ""
		if p.LastCompleted != nil {
			last = p.LastCompleted.UTC().Format(time.RFC3339)
		}
		_ = writer.Write([]string{
			p.InterpreterID.String(),
			strconv.Itoa(p.JobsCount),
			formatMoney(p.Gross),
			formatMoney(p.Earnings),
			last,
		})
	}

	writer.Flush()
	return writer.Error()
}

// Суммы приходят из NUMERIC колонок с масштабом валюты, знаки после запятой не обрезаются.
func formatMoney(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

func earningsTimeout(cfg *config.EarningsConfig) time.Duration {
	if cfg != nil && cfg.RequestTimeoutSeconds > 0 {
		return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return 5 * time.Second
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/database"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"
	"interpretation-service/internal/redis"
)

const (
	DefaultInterpreterLimit = 50
	defaultEarningsCacheTTL = 10 * time.Minute
)

// EarningsService агрегирует выручку платформы и выплаты переводчикам по завершённым заявкам.
// Результаты кешируются в Redis, если клиент передан.
type EarningsService struct {
	db                  *database.DB
	redis               *redis.Client
	log                 *logger.Logger
	cacheTTL            time.Duration
	defaultInterpreters int
	defaultGroupBy      models.EarningsGroupBy
}

// NewEarningsService создает сервис отчётов.
func NewEarningsService(db *database.DB, redisClient *redis.Client, log *logger.Logger, cfg *config.EarningsConfig) *EarningsService {
	cacheTTL := defaultEarningsCacheTTL
	interpreters := DefaultInterpreterLimit
	groupBy := models.EarningsGroupNone

	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.DefaultInterpreterLimit > 0 {
			interpreters = cfg.DefaultInterpreterLimit
		}
		if g := models.EarningsGroupBy(cfg.DefaultGroupBy); g.Valid() {
			groupBy = g
		}
	}

	return &EarningsService{
		db:                  db,
		redis:               redisClient,
		log:                 log,
		cacheTTL:            cacheTTL,
		defaultInterpreters: interpreters,
		defaultGroupBy:      groupBy,
	}
}

// GetSummary возвращает итоги за период, разбивку по типам услуг и, при группировке, по интервалам.
func (s *EarningsService) GetSummary(ctx context.Context, filter *models.EarningsFilter) (*models.EarningsSummary, error) {
	filter = s.normalizeFilter(filter)
	cacheKey := s.buildCacheKey("summary", filter)

	var cached models.EarningsSummary
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	result := &models.EarningsSummary{
		From:    filter.From,
		To:      filter.To,
		GroupBy: string(filter.GroupBy),
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) AS jobs_count,
		       COALESCE(SUM(total_amount), 0) AS gross,
		       COALESCE(SUM(commission), 0) AS commission,
		       COALESCE(SUM(interpreter_earnings), 0) AS interpreter_earnings
		FROM jobs
		WHERE status = 'completed' AND completed_at BETWEEN $1 AND $2
	`, filter.From, filter.To)
	if err := row.Scan(&result.JobsCount, &result.Gross, &result.Commission, &result.InterpreterEarnings); err != nil {
		return nil, fmt.Errorf("failed to load earnings summary: %w", err)
	}

	byType, err := s.fetchByServiceType(ctx, filter)
	if err != nil {
		return nil, err
	}
	result.ByServiceType = byType

	periods, err := s.fetchPeriods(ctx, filter)
	if err != nil {
		return nil, err
	}
	result.Periods = periods
	result.GeneratedAt = time.Now()

	s.saveToCache(ctx, cacheKey, result)
	return result, nil
}

// GetInterpreterPayouts возвращает суммы к выплате по переводчикам, начиная с самых крупных.
func (s *EarningsService) GetInterpreterPayouts(ctx context.Context, filter *models.EarningsFilter) ([]*models.InterpreterPayout, error) {
	filter = s.normalizeFilter(filter)
	cacheKey := s.buildCacheKey("interpreters", filter)

	var cached []*models.InterpreterPayout
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT interpreter_id,
		       COUNT(*) AS jobs_count,
		       COALESCE(SUM(total_amount), 0) AS gross,
		       COALESCE(SUM(interpreter_earnings), 0) AS earnings,
		       MAX(completed_at) AS last_completed_at
		FROM jobs
		WHERE status = 'completed' AND interpreter_id IS NOT NULL
			AND completed_at BETWEEN $1 AND $2
		GROUP BY interpreter_id
		ORDER BY earnings DESC, jobs_count DESC, interpreter_id ASC
		LIMIT $3
	`, filter.From, filter.To, filter.InterpreterLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load interpreter payouts: %w", err)
	}
	defer rows.Close()

	result := make([]*models.InterpreterPayout, 0)
	for rows.Next() {
		item := &models.InterpreterPayout{}
		if err := rows.Scan(&item.InterpreterID, &item.JobsCount, &item.Gross, &item.Earnings, &item.LastCompleted); err != nil {
			return nil, fmt.Errorf("failed to scan interpreter payout: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interpreter payouts: %w", err)
	}

	s.saveToCache(ctx, cacheKey, result)
	return result, nil
}

func (s *EarningsService) fetchByServiceType(ctx context.Context, filter *models.EarningsFilter) ([]models.ServiceTypeEarnings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service_type,
		       COUNT(*) AS jobs_count,
		       COALESCE(SUM(total_amount), 0) AS gross,
		       COALESCE(SUM(commission), 0) AS commission
		FROM jobs
		WHERE status = 'completed' AND completed_at BETWEEN $1 AND $2
		GROUP BY service_type
		ORDER BY gross DESC, service_type ASC
	`, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load earnings by service type: %w", err)
	}
	defer rows.Close()

	result := make([]models.ServiceTypeEarnings, 0)
	for rows.Next() {
		var item models.ServiceTypeEarnings
		if err := rows.Scan(&item.ServiceType, &item.JobsCount, &item.Gross, &item.Commission); err != nil {
			return nil, fmt.Errorf("failed to scan service type earnings: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service type earnings: %w", err)
	}

	return result, nil
}

func (s *EarningsService) fetchPeriods(ctx context.Context, filter *models.EarningsFilter) ([]models.EarningsPeriod, error) {
	if filter.GroupBy == models.EarningsGroupNone {
		return nil, nil
	}

	// group_by прошёл Valid, поэтому подстановка в date_trunc безопасна.
	query := fmt.Sprintf(`
		SELECT date_trunc('%s', completed_at) AS period,
		       COUNT(*) AS jobs_count,
		       COALESCE(SUM(total_amount), 0) AS gross,
		       COALESCE(SUM(commission), 0) AS commission,
		       COALESCE(SUM(interpreter_earnings), 0) AS interpreter_earnings
		FROM jobs
		WHERE status = 'completed' AND completed_at BETWEEN $1 AND $2
		GROUP BY period
		ORDER BY period ASC
	`, filter.GroupBy)

	rows, err := s.db.QueryContext(ctx, query, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load earnings periods: %w", err)
	}
	defer rows.Close()

	var result []models.EarningsPeriod
	for rows.Next() {
		var (
			periodTime time.Time
			item       models.EarningsPeriod
		)
		if err := rows.Scan(&periodTime, &item.JobsCount, &item.Gross, &item.Commission, &item.InterpreterEarnings); err != nil {
			return nil, fmt.Errorf("failed to scan earnings period: %w", err)
		}
		item.Period = formatPeriod(periodTime, filter.GroupBy)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate earnings periods: %w", err)
	}

	return result, nil
}

func (s *EarningsService) normalizeFilter(filter *models.EarningsFilter) *models.EarningsFilter {
	if filter.InterpreterLimit <= 0 {
		filter.InterpreterLimit = s.defaultInterpreters
	}
	if filter.GroupBy == "" || !filter.GroupBy.Valid() {
		filter.GroupBy = s.defaultGroupBy
	}
	return filter
}

func (s *EarningsService) buildCacheKey(kind string, filter *models.EarningsFilter) string {
	return redis.GenerateKey(redis.KeyPrefixEarnings,
		kind,
		filter.From.Format("2006-01-02"),
		filter.To.Format("2006-01-02"),
		string(filter.GroupBy),
		strconv.Itoa(filter.InterpreterLimit),
	)
}

func (s *EarningsService) tryGetFromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	return s.redis.Get(ctx, key, dest) == nil
}

func (s *EarningsService) saveToCache(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache earnings report")
	}
}

func formatPeriod(period time.Time, groupBy models.EarningsGroupBy) string {
	if groupBy == models.EarningsGroupMonth {
		return period.Format("2006-01")
	}
	// для недели это дата понедельника
	return period.Format("2006-01-02")
}

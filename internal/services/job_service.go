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

var (
	ErrUnknownJobStatus        = errors.New("unknown job status")
	ErrInterpreterReassignment = errors.New("interpreter reassignment without status change")
)

const jobColumns = `id, client_id, interpreter_id, service_type, language, quantity, is_rush, is_after_hours, is_holiday,
		       travel_miles, scheduled_at, location, notes, status, rate, total_amount, commission,
		       interpreter_earnings, currency, created_at, updated_at, completed_at`

// JobService представляет сервис для работы с заявками на перевод
type JobService struct {
	db      *database.DB
	log     *logger.Logger
	pricing *PricingService
}

// NewJobService создает новый экземпляр сервиса заявок
func NewJobService(db *database.DB, log *logger.Logger, pricing *PricingService) *JobService {
	return &JobService{
		db:      db,
		log:     log,
		pricing: pricing,
	}
}

// CreateJob проверяет заявку, рассчитывает стоимость и сохраняет её в статусе pending
func (s *JobService) CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	if req == nil {
		return nil, apperror.Validation("request body is required", nil)
	}
	if req.ClientID == uuid.Nil {
		return nil, apperror.InvalidField("client_id", "client_id is required", nil)
	}
	lang, ok := models.LookupLanguage(req.Language)
	if !ok {
		return nil, apperror.InvalidField("language", fmt.Sprintf("unsupported language: %q", req.Language), nil)
	}
	if req.ScheduledAt.IsZero() {
		return nil, apperror.InvalidField("scheduled_at", "scheduled_at is required", nil)
	}
	if req.ServiceType.IsInPerson() && (req.Location == nil || strings.TrimSpace(*req.Location) == "") {
		return nil, apperror.InvalidField("location", "location is required for in-person interpretation", nil)
	}

	pricing, err := s.pricing.CalculateServiceCost(req.ServiceType, req.Quantity, req.Modifiers)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:                  uuid.New(),
		ClientID:            req.ClientID,
		ServiceType:         req.ServiceType,
		Language:            lang.Code,
		Quantity:            req.Quantity,
		Modifiers:           req.Modifiers,
		ScheduledAt:         req.ScheduledAt.UTC(),
		Location:            req.Location,
		Notes:               req.Notes,
		Status:              models.JobStatusPending,
		Rate:                pricing.UnitRate,
		TotalAmount:         pricing.Total,
		Commission:          pricing.Commission,
		InterpreterEarnings: pricing.InterpreterEarnings,
		Currency:            pricing.Currency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	query := `
		INSERT INTO jobs (id, client_id, service_type, language, quantity, is_rush, is_after_hours, is_holiday, travel_miles,
		                  scheduled_at, location, notes, status, rate, total_amount, commission, interpreter_earnings, currency,
		                  created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err = s.db.ExecContext(ctx, query,
		job.ID, job.ClientID, job.ServiceType, job.Language, job.Quantity,
		job.Modifiers.IsRush, job.Modifiers.IsAfterHours, job.Modifiers.IsHoliday, job.Modifiers.TravelMiles,
		job.ScheduledAt, job.Location, job.Notes, job.Status, job.Rate, job.TotalAmount, job.Commission,
		job.InterpreterEarnings, job.Currency, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("job already exists", err)
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"job_id":       job.ID,
		"client_id":    job.ClientID,
		"service_type": job.ServiceType,
		"total_amount": job.TotalAmount.String(),
	}).Info("Job created successfully")

	return job, nil
}

// GetJob получает заявку по ID
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("job not found", err)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJobs получает список заявок с фильтрацией
func (s *JobService) GetJobs(ctx context.Context, status *models.JobStatus, interpreterID *uuid.UUID, limit, offset int) ([]*models.Job, error) {
	if status != nil && !status.Valid() {
		return nil, invalidStatus(*status)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	if interpreterID != nil {
		query += fmt.Sprintf(" AND interpreter_id = $%d", argIndex)
		args = append(args, *interpreterID)
		argIndex++
	}

	query += " ORDER BY scheduled_at ASC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJobStatus меняет статус заявки и возвращает предыдущий статус
func (s *JobService) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, req *models.UpdateJobStatusRequest) (models.JobStatus, error) {
	if req == nil || req.Status == "" {
		return "", apperror.InvalidField("status", "status is required", nil)
	}
	if !req.Status.Valid() {
		return "", invalidStatus(req.Status)
	}
	if req.InterpreterID != nil && *req.InterpreterID == uuid.Nil {
		return "", apperror.InvalidField("interpreter_id", "interpreter_id must be a valid UUID", nil)
	}

	var (
		currentStatus models.JobStatus
		interpreterID *uuid.UUID
	)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var completedAt sql.NullTime
		selectQuery := `
			SELECT status, interpreter_id, completed_at
			FROM jobs
			WHERE id = $1
			FOR UPDATE
		`
		if err := tx.QueryRowContext(ctx, selectQuery, jobID).Scan(&currentStatus, &interpreterID, &completedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("job not found", err)
			}
			return fmt.Errorf("failed to fetch job status: %w", err)
		}

		// Повтор статуса ничего не пишет; смена переводчика без смены статуса запрещена.
		if currentStatus == req.Status {
			if req.InterpreterID != nil && (interpreterID == nil || *interpreterID != *req.InterpreterID) {
				return apperror.Conflict(fmt.Sprintf("job is %s, interpreter cannot be changed without a status change", currentStatus), ErrInterpreterReassignment)
			}
			return nil
		}

		if !isValidJobStatusTransition(currentStatus, req.Status) {
			return apperror.Conflict(fmt.Sprintf("invalid job status transition: %s -> %s", currentStatus, req.Status), nil)
		}

		if req.InterpreterID != nil {
			interpreterID = req.InterpreterID
		}
		if req.Status == models.JobStatusAccepted && interpreterID == nil {
			return apperror.InvalidField("interpreter_id", "interpreter_id is required to accept a job", nil)
		}

		now := time.Now().UTC()
		if req.Status == models.JobStatusCompleted && !completedAt.Valid {
			completedAt = sql.NullTime{Time: now, Valid: true}
		}

		updateQuery := `
			UPDATE jobs
			SET status = $1, interpreter_id = $2, updated_at = $3, completed_at = $4
			WHERE id = $5
		`
		result, err := tx.ExecContext(ctx, updateQuery, req.Status, interpreterID, now, completedAt, jobID)
		if err != nil {
			return fmt.Errorf("failed to update job status: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("job not found", nil)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.WithFields(map[string]interface{}{
		"job_id":         jobID,
		"old_status":     currentStatus,
		"new_status":     req.Status,
		"interpreter_id": interpreterID,
	}).Info("Job status updated")

	return currentStatus, nil
}

func invalidStatus(status models.JobStatus) error {
	return apperror.InvalidField("status", fmt.Sprintf("unknown job status: %q", string(status)), ErrUnknownJobStatus)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID, &job.ClientID, &job.InterpreterID, &job.ServiceType, &job.Language, &job.Quantity,
		&job.Modifiers.IsRush, &job.Modifiers.IsAfterHours, &job.Modifiers.IsHoliday, &job.Modifiers.TravelMiles,
		&job.ScheduledAt, &job.Location, &job.Notes, &job.Status, &job.Rate, &job.TotalAmount, &job.Commission,
		&job.InterpreterEarnings, &job.Currency, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Повтор текущего статуса допустим для любого статуса, завершённые и отменённые заявки дальше не меняются.
func isValidJobStatusTransition(from, to models.JobStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case models.JobStatusPending:
		return to == models.JobStatusAccepted || to == models.JobStatusCancelled
	case models.JobStatusAccepted:
		return to == models.JobStatusInProgress || to == models.JobStatusCancelled
	case models.JobStatusInProgress:
		return to == models.JobStatusCompleted
	default:
		return false
	}
}

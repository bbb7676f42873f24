package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"interpretation-service/internal/models"
	"interpretation-service/internal/redis"

	"github.com/google/uuid"
)

type stubQuoteService struct {
	calcResult *models.PricingResult
	quote      *models.Quote
	err        error
	getCalls   int
}

func (s *stubQuoteService) Calculate(ctx context.Context, req *models.CalculateRequest) (*models.PricingResult, error) {
	return s.calcResult, s.err
}

func (s *stubQuoteService) CreateQuote(ctx context.Context, req *models.CreateQuoteRequest) (*models.Quote, error) {
	return s.quote, s.err
}

func (s *stubQuoteService) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	s.getCalls++
	return s.quote, s.err
}

type stubJobService struct {
	job       *models.Job
	jobs      []*models.Job
	oldStatus models.JobStatus
	err       error

	listCalls    int
	gotStatus    *models.JobStatus
	gotLimit     int
	gotOffset    int
	gotInterpID  *uuid.UUID
	updateCalled bool
}

func (s *stubJobService) CreateJob(ctx context.Context, req *models.CreateJobRequest) (*models.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.job, s.err
}

func (s *stubJobService) GetJobs(ctx context.Context, status *models.JobStatus, interpreterID *uuid.UUID, limit, offset int) ([]*models.Job, error) {
	s.listCalls++
	s.gotStatus, s.gotInterpID, s.gotLimit, s.gotOffset = status, interpreterID, limit, offset
	return s.jobs, s.err
}

func (s *stubJobService) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, req *models.UpdateJobStatusRequest) (models.JobStatus, error) {
	s.updateCalled = true
	return s.oldStatus, s.err
}

type stubProducer struct {
	quoteCreated  int
	jobCreated    int
	statusChanged int
	err           error
}

func (p *stubProducer) PublishQuoteCreated(quote *models.Quote) error {
	p.quoteCreated++
	return p.err
}

func (p *stubProducer) PublishJobCreated(job *models.Job) error {
	p.jobCreated++
	return p.err
}

func (p *stubProducer) PublishJobStatusChanged(jobID uuid.UUID, oldStatus, newStatus models.JobStatus, interpreterID *uuid.UUID) error {
	p.statusChanged++
	return p.err
}

// memoryCache хранит значения в JSON, как это делает Redis клиент
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	setErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memoryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

var errStubInternal = errors.New("connection refused")

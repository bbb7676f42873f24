package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события расчётов и заявок в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного продюсера Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishQuoteCreated публикует событие о новом расчёте стоимости
func (p *Producer) PublishQuoteCreated(quote *models.Quote) error {
	event := newEvent(models.EventTypeQuoteCreated, models.QuoteCreatedData{
		QuoteID:     quote.ID,
		ServiceType: quote.ServiceType,
		Pricing:     quote.Pricing,
	})
	return p.publishEvent(p.topics.Quotes, quote.ID.String(), event)
}

// PublishJobCreated публикует событие о новой заявке
func (p *Producer) PublishJobCreated(job *models.Job) error {
	event := newEvent(models.EventTypeJobCreated, models.JobCreatedData{
		JobID:               job.ID,
		ClientID:            job.ClientID,
		ServiceType:         job.ServiceType,
		Language:            job.Language,
		TotalAmount:         models.FormatAmount(job.TotalAmount, job.Currency),
		Commission:          models.FormatAmount(job.Commission, job.Currency),
		InterpreterEarnings: models.FormatAmount(job.InterpreterEarnings, job.Currency),
		Currency:            job.Currency,
	})
	return p.publishEvent(p.topics.Jobs, job.ID.String(), event)
}

// PublishJobStatusChanged публикует событие о смене статуса заявки
func (p *Producer) PublishJobStatusChanged(jobID uuid.UUID, oldStatus, newStatus models.JobStatus, interpreterID *uuid.UUID) error {
	event := newEvent(models.EventTypeJobStatusChanged, models.JobStatusChangedData{
		JobID:         jobID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		InterpreterID: interpreterID,
	})
	return p.publishEvent(p.topics.Jobs, jobID.String(), event)
}

func newEvent(eventType models.EventType, data interface{}) models.Event {
	return models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// publishEvent сериализует событие и отправляет его в топик.
// Ключ сообщения задаёт партицию, поэтому события одной сущности идут по порядку.
func (p *Producer) publishEvent(topic, key string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.WithError(err).WithFields(map[string]interface{}{
			"topic":      topic,
			"event_type": event.Type,
		}).Error("Failed to publish event")
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":      topic,
		"event_type": event.Type,
		"event_id":   event.ID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("Event published")

	return nil
}

package recordpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var (
	_ secondary.ExecutionEventPublisher = (*Publisher)(nil)
	_ secondary.ExecutionEventPublisher = NopPublisher{}
)

// ExecutionRecordedEvent is the message body. Source code is left out.
type ExecutionRecordedEvent struct {
	RecordID        string    `json:"record_id"`
	UserID          string    `json:"user_id"`
	ProblemID       string    `json:"problem_id"`
	Language        string    `json:"language"`
	Passed          bool      `json:"passed"`
	PassedCount     int       `json:"passed_count"`
	TotalCount      int       `json:"total_count"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	MemoryUsageMB   float64   `json:"memory_usage_mb"`
	IsQuickTest     bool      `json:"is_quick_test"`
	CreatedAt       time.Time `json:"created_at"`
}

func newEvent(record *domain.ExecutionRecord) ExecutionRecordedEvent {
	return ExecutionRecordedEvent{
		RecordID:        record.ID.String(),
		UserID:          record.UserID,
		ProblemID:       record.ProblemID,
		Language:        record.Language,
		Passed:          record.Passed,
		PassedCount:     record.PassedCount,
		TotalCount:      record.TotalCount,
		ExecutionTimeMs: record.ExecutionTimeMs,
		MemoryUsageMB:   record.MemoryUsageMB,
		IsQuickTest:     record.IsQuickTest,
		CreatedAt:       record.CreatedAt,
	}
}

// NewSyncProducer dials the brokers named in cfg.
func NewSyncProducer(cfg *config.KafkaConfig) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// Publisher sends one event per appended execution record, keyed by user
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   primary.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, logger primary.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) PublishRecorded(ctx context.Context, record *domain.ExecutionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(newEvent(record))
	if err != nil {
		return fmt.Errorf("failed to marshal execution event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.UserID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish execution event: %w", err)
	}
	p.logger.Debug("Published execution event", "recordId", record.ID, "partition", partition, "offset", offset)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when no brokers are configured
type NopPublisher struct{}

func (NopPublisher) PublishRecorded(context.Context, *domain.ExecutionRecord) error { return nil }
func (NopPublisher) Close() error                                                   { return nil }

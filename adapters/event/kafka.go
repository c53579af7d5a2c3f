package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/minhvu/portfolio-hub/internal/config"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/logger"
)

const TopicDocumentEvents = "portfolio.document.events"

// KafkaChangePublisher broadcasts document change events. It is the
// explicit channel other consumers (the render worker, a second server
// instance) subscribe to instead of watching a storage tier.
type KafkaChangePublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaChangePublisher(cfg config.Config, log logger.Logger) (*KafkaChangePublisher, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicDocumentEvents,
		Balancer: &kafka.LeastBytes{},
	}

	log.Info("Initialize Kafka producer successfully.")
	return &KafkaChangePublisher{writer: writer, logger: log}, nil
}

var _ portfolio.ChangePublisher = (*KafkaChangePublisher)(nil)

func (p *KafkaChangePublisher) PublishDocumentChanged(ctx context.Context, ev portfolio.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(uuid.NewString()),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (p *KafkaChangePublisher) Close() {
	if p.writer != nil {
		p.writer.Close()
	}
	p.logger.Info("Closed Kafka producer")
}

// NewDocumentEventsReader builds the consumer side used by the render
// worker.
func NewDocumentEventsReader(cfg config.Config, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicDocumentEvents,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

package repository

import (
	"context"

	"FinBoard/internal/domain/models"
	"FinBoard/pkg/kafka"
)

// KafkaPublisher emits one event per generated report. Keyed by period so
// consumers see per-period ordering.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishReport(ctx context.Context, r *models.Report) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Period), r)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

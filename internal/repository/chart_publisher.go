package repository

import (
	"context"
	"errors"

	"NatalChart/internal/domain/models"
	"NatalChart/internal/domain/repository"
)

// EventProducer is the subset of pkg/kafka.Producer the publisher needs.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher implements ChartPublisher for Kafka.
type KafkaPublisher struct {
	producer EventProducer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher. Events are keyed by chart key
// so repeated computations of one moment stay on one partition.
func NewKafkaPublisher(producer EventProducer, topic string) repository.ChartPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *models.ChartEvent) error {
	if ev == nil {
		return errors.New("event is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(ev.Key), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.ChartEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

var (
	_ repository.ChartPublisher = (*KafkaPublisher)(nil)
	_ repository.ChartPublisher = NoopPublisher{}
)

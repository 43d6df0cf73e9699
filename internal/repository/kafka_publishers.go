package repository

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// MessageProducer is the slice of kafka.Producer the publishers need.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher emits finished reports keyed by symbol so every report for
// one symbol lands on the same partition.
type KafkaReportPublisher struct {
	producer MessageProducer
	topic    string
}

func NewKafkaReportPublisher(p MessageProducer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: p, topic: topic}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, r *models.Report) error {
	if r == nil {
		return errors.New("nil report")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(r.Subject.Symbol), r); err != nil {
		return fmt.Errorf("publish report %s: %w", r.RunID, err)
	}
	return nil
}

func (p *KafkaReportPublisher) Close() error { return p.producer.Close() }

// KafkaLogPublisher ships aggregated error-log batches for the LogCollector.
type KafkaLogPublisher struct {
	producer MessageProducer
}

func NewKafkaLogPublisher(p MessageProducer) *KafkaLogPublisher {
	return &KafkaLogPublisher{producer: p}
}

func (p *KafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

var (
	_ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)
	_ applogger.Publisher     = (*KafkaLogPublisher)(nil)
)

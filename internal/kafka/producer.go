package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// Event types published by the analysis pipeline.
const (
	EventAnalysisCompleted = "ANALYSIS_COMPLETED"
	EventReportGenerated   = "REPORT_GENERATED"
)

// Producer handles publishing analysis events to Kafka. A nil *Producer is
// valid and publishes nothing, so event publishing stays optional.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishAnalysisCompleted publishes an event after an indicator run for a
// symbol finishes.
func (p *Producer) PublishAnalysisCompleted(ctx context.Context, symbol string, kind models.IndicatorKind) error {
	event := models.AnalysisEvent{
		EventType: EventAnalysisCompleted,
		Symbol:    symbol,
		Kind:      string(kind),
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishReportGenerated publishes an event after a report is persisted.
func (p *Producer) PublishReportGenerated(ctx context.Context, reportID int, symbols string) error {
	event := models.AnalysisEvent{
		EventType: EventReportGenerated,
		Symbol:    symbols,
		ReportID:  reportID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbols, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.AnalysisEvent) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

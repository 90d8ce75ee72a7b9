package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"NatalChart/internal/domain/models"
	domrepo "NatalChart/internal/domain/repository"
	"NatalChart/internal/services/astro"
	pkgkafka "NatalChart/pkg/kafka"
)

// ChartComputer is the part of ChartService the consumer needs.
type ChartComputer interface {
	Compute(ctx context.Context, m models.BirthMoment, source models.ChartSource, requestID string) (*models.ChartResult, error)
}

// KafkaChartRequestsHandler computes charts requested over Kafka. The result
// leaves through the chart event publisher.
type KafkaChartRequestsHandler struct {
	topic   string
	charts  ChartComputer
	metrics domrepo.Metrics
}

func NewKafkaChartRequestsHandler(topic string, charts ChartComputer, metrics domrepo.Metrics) *KafkaChartRequestsHandler {
	return &KafkaChartRequestsHandler{topic: topic, charts: charts, metrics: metrics}
}

func (h *KafkaChartRequestsHandler) Topic() string { return h.topic }

// Handle processes one ChartRequest JSON payload. Malformed or invalid
// requests are permanent failures and go straight to the DLQ.
func (h *KafkaChartRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ChartRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode chart request: %w", err))
	}
	if err := ValidateRequest(ctx, &req); err != nil {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(err)
	}

	m, err := MomentFromRequest(&req)
	if err != nil {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(err)
	}

	if _, err := h.charts.Compute(ctx, m, models.SourceKafka, req.RequestID); err != nil {
		if _, ok := astro.AsInputError(err); ok {
			return pkgkafka.Permanent(err)
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaChartRequestsHandler)(nil)

package repository

import (
	"context"

	"NatalChart/internal/domain/models"
)

// ChartCache stores computed charts by BirthMoment key.
type ChartCache interface {
	Get(ctx context.Context, key string) (*models.ChartResult, bool, error)
	Set(ctx context.Context, key string, chart *models.ChartResult) error
	Close() error
}

type ChartPublisher interface {
	Publish(ctx context.Context, ev *models.ChartEvent) error
	Close() error
}

type Metrics interface {
	RecordChartComputed(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(hit bool)
	RecordAspect(aspect string)
}

package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NatalChart/internal/domain/models"
	drepo "NatalChart/internal/domain/repository"
	domsvc "NatalChart/internal/domain/service"
	internalrepo "NatalChart/internal/repository"
	"NatalChart/internal/services/astro"
	applogger "NatalChart/pkg/logger"

	"github.com/google/uuid"
)

// ServiceOption configures ChartService.
type ServiceOption func(*ChartService)

// WithCache enables chart caching. A nil cache disables it.
func WithCache(c drepo.ChartCache) ServiceOption {
	return func(s *ChartService) {
		s.cache = c
	}
}

// WithPublisher sets where chart events go.
func WithPublisher(p drepo.ChartPublisher) ServiceOption {
	return func(s *ChartService) {
		s.pub = p
	}
}

// WithBatch sets the maximum batch size and the number of charts computed
// concurrently.
func WithBatch(limit, workers int) ServiceOption {
	return func(s *ChartService) {
		if limit > 0 {
			s.batchLimit = limit
		}
		if workers > 0 {
			s.workers = workers
		}
	}
}

func WithLogger(l *applogger.Logger) ServiceOption {
	return func(s *ChartService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ChartService) {
		if now != nil {
			s.now = now
		}
	}
}

// ChartService runs chart computations for every entry point: HTTP, batch,
// Kafka and the sky stream.
type ChartService struct {
	calc       domsvc.ChartCalculator
	model      string
	keySpace   string
	aspects    []models.AspectDefinition
	cache      drepo.ChartCache
	pub        drepo.ChartPublisher
	metrics    drepo.Metrics
	log        *applogger.Logger
	batchLimit int
	workers    int
	now        func() time.Time
}

// NewChartService creates a ChartService over an engine calculator.
func NewChartService(calc *astro.Calculator, metrics drepo.Metrics, opts ...ServiceOption) *ChartService {
	s := &ChartService{
		calc:       calc,
		model:      calc.Model().Name(),
		keySpace:   calc.Fingerprint(),
		aspects:    calc.Aspects().Table(),
		pub:        internalrepo.NoopPublisher{},
		metrics:    metrics,
		log:        applogger.Nop(),
		batchLimit: 100,
		workers:    8,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelName returns the orbital model used for every chart.
func (s *ChartService) ModelName() string { return s.model }

// AspectTable returns a copy of the aspect table in match order.
func (s *ChartService) AspectTable() []models.AspectDefinition {
	out := make([]models.AspectDefinition, len(s.aspects))
	copy(out, s.aspects)
	return out
}

// BatchLimit is the largest batch ComputeBatch accepts.
func (s *ChartService) BatchLimit() int { return s.batchLimit }

// Compute returns the chart of m. Cache and publish failures are logged and
// counted but never fail the call.
func (s *ChartService) Compute(ctx context.Context, m models.BirthMoment, source models.ChartSource, requestID string) (*models.ChartResult, error) {
	start := time.Now()
	if err := astro.ValidateMoment(m); err != nil {
		s.metrics.RecordError("invalid_input")
		return nil, err
	}

	key := internalrepo.ChartKey(s.keySpace, m)
	chart, cached := s.lookup(ctx, key)
	if !cached {
		computeStart := time.Now()
		c, err := s.calc.Compute(m)
		if err != nil {
			s.metrics.RecordError("compute")
			return nil, fmt.Errorf("compute chart: %w", err)
		}
		s.metrics.RecordLatency("compute", time.Since(computeStart).Seconds())
		chart = &c
		s.store(ctx, key, chart)
	}

	for _, a := range chart.Aspects {
		s.metrics.RecordAspect(a.Type.String())
	}
	s.publish(ctx, key, chart, source, requestID)
	s.metrics.RecordChartComputed(string(source))
	s.metrics.RecordLatency("chart", time.Since(start).Seconds())
	return chart, nil
}

func (s *ChartService) lookup(ctx context.Context, key string) (*models.ChartResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	chart, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.RecordError("cache_get")
		s.log.Warn("chart cache get failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	s.metrics.RecordCacheLookup(ok)
	return chart, ok
}

func (s *ChartService) store(ctx context.Context, key string, chart *models.ChartResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, chart); err != nil {
		s.metrics.RecordError("cache_set")
		s.log.Warn("chart cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (s *ChartService) publish(ctx context.Context, key string, chart *models.ChartResult, source models.ChartSource, requestID string) {
	ev := &models.ChartEvent{
		ID:         uuid.NewString(),
		Source:     source,
		RequestID:  requestID,
		ComputedAt: s.now().UTC(),
		Key:        key,
		Chart:      *chart,
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("chart event publish failed",
			applogger.String("event_id", ev.ID),
			applogger.String("key", key),
			applogger.Error(err),
		)
	}
}

// ComputeBatch computes every request concurrently. Results keep request
// order; an invalid item gets its own error and does not fail the batch.
func (s *ChartService) ComputeBatch(ctx context.Context, reqs []models.ChartRequest) ([]models.BatchItem, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("batch is empty")
	}
	if len(reqs) > s.batchLimit {
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(reqs), s.batchLimit)
	}

	start := time.Now()
	items := make([]models.BatchItem, len(reqs))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items[i].Index = i

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i].Error = ctx.Err().Error()
				return
			}

			if err := ValidateRequest(ctx, &reqs[i]); err != nil {
				items[i].Error = err.Error()
				return
			}
			m, err := MomentFromRequest(&reqs[i])
			if err != nil {
				items[i].Error = err.Error()
				return
			}
			chart, err := s.Compute(ctx, m, models.SourceBatch, reqs[i].RequestID)
			if err != nil {
				items[i].Error = err.Error()
				return
			}
			items[i].Chart = chart
		}(i)
	}
	wg.Wait()

	s.metrics.RecordLatency("batch", time.Since(start).Seconds())
	return items, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"NatalChart/internal/domain/models"
	"NatalChart/internal/domain/repository"
	"NatalChart/pkg/cache"
)

// ChartKey builds the cache key of a chart. space is the calculator
// fingerprint, so a change of model parameters never serves stale charts.
func ChartKey(space string, m models.BirthMoment) string {
	return cache.GenerateKeyWithParams("chart", space, m.Key())
}

// CachedCharts implements ChartCache on top of a cache.Service.
type CachedCharts struct {
	cache cache.Service
	ttl   time.Duration
}

// NewChartCache creates a chart cache backed by c.
func NewChartCache(c cache.Service, ttl time.Duration) repository.ChartCache {
	return &CachedCharts{cache: c, ttl: ttl}
}

func (s *CachedCharts) Get(ctx context.Context, key string) (*models.ChartResult, bool, error) {
	var chart models.ChartResult
	err := s.cache.Get(ctx, key, &chart)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &chart, true, nil
}

func (s *CachedCharts) Set(ctx context.Context, key string, chart *models.ChartResult) error {
	if chart == nil {
		return errors.New("chart is nil")
	}
	return s.cache.Set(ctx, key, chart, s.ttl)
}

func (s *CachedCharts) Close() error {
	return s.cache.Close()
}

// NoopChartCache never hits. Used when caching is disabled.
type NoopChartCache struct{}

func (NoopChartCache) Get(context.Context, string) (*models.ChartResult, bool, error) {
	return nil, false, nil
}
func (NoopChartCache) Set(context.Context, string, *models.ChartResult) error { return nil }
func (NoopChartCache) Close() error                                           { return nil }

var (
	_ repository.ChartCache = (*CachedCharts)(nil)
	_ repository.ChartCache = NoopChartCache{}
)

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"NatalChart/internal/domain/models"
	"NatalChart/internal/services/astro"
)

type fakeMetrics struct {
	mu       sync.Mutex
	computed map[string]int
	errs     map[string]int
	hits     int
	misses   int
	aspects  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{computed: map[string]int{}, errs: map[string]int{}}
}

func (m *fakeMetrics) RecordChartComputed(source string) {
	m.mu.Lock()
	m.computed[source]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordLatency(string, float64) {}
func (m *fakeMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordAspect(string) {
	m.mu.Lock()
	m.aspects++
	m.mu.Unlock()
}

type fakeCache struct {
	mu     sync.Mutex
	items  map[string]*models.ChartResult
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[string]*models.ChartResult{}} }

func (c *fakeCache) Get(_ context.Context, key string) (*models.ChartResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, chart *models.ChartResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.items[key] = chart
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.ChartEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev *models.ChartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

var j2000 = models.BirthMoment{Year: 2000, Month: 1, Day: 1, Hour: 12, Latitude: 0, Longitude: 0}

func newTestService(opts ...ServiceOption) (*ChartService, *fakeMetrics) {
	fm := newFakeMetrics()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	opts = append([]ServiceOption{WithClock(func() time.Time { return fixed })}, opts...)
	return NewChartService(astro.NewCalculator(), fm, opts...), fm
}

func TestComputeCachesAndPublishes(t *testing.T) {
	fc := newFakeCache()
	fp := &fakePublisher{}
	svc, fm := newTestService(WithCache(fc), WithPublisher(fp))
	ctx := context.Background()

	first, err := svc.Compute(ctx, j2000, models.SourceHTTP, "req-1")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := svc.Compute(ctx, j2000, models.SourceKafka, "req-2")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if fc.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", fc.sets)
	}
	if fm.misses != 1 || fm.hits != 1 {
		t.Fatalf("misses=%d hits=%d", fm.misses, fm.hits)
	}
	if first.Ascendant != second.Ascendant || first.Positions != second.Positions {
		t.Fatal("cached chart differs from computed chart")
	}
	if len(fp.events) != 2 {
		t.Fatalf("events = %d, want 2", len(fp.events))
	}
	ev := fp.events[1]
	if ev.Source != models.SourceKafka || ev.RequestID != "req-2" || ev.ID == "" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Key != fp.events[0].Key {
		t.Fatal("events for one moment must share a key")
	}
	if !ev.ComputedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("computed_at = %v", ev.ComputedAt)
	}
	if fm.computed["http"] != 1 || fm.computed["kafka"] != 1 {
		t.Fatalf("computed = %v", fm.computed)
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	fp := &fakePublisher{}
	svc, fm := newTestService(WithPublisher(fp))

	bad := j2000
	bad.Latitude = 91
	_, err := svc.Compute(context.Background(), bad, models.SourceHTTP, "")
	ie, ok := astro.AsInputError(err)
	if !ok || ie.Field != "latitude" {
		t.Fatalf("err = %v", err)
	}
	if len(fp.events) != 0 {
		t.Fatal("invalid input must not publish")
	}
	if fm.errs["invalid_input"] != 1 {
		t.Fatalf("errs = %v", fm.errs)
	}
}

func TestComputeSurvivesSideEffectFailures(t *testing.T) {
	fc := newFakeCache()
	fc.getErr = errors.New("redis down")
	fc.setErr = errors.New("redis down")
	fp := &fakePublisher{err: errors.New("broker down")}
	svc, fm := newTestService(WithCache(fc), WithPublisher(fp))

	chart, err := svc.Compute(context.Background(), j2000, models.SourceHTTP, "")
	if err != nil || chart == nil {
		t.Fatalf("compute: %v", err)
	}
	for _, kind := range []string{"cache_get", "cache_set", "publish"} {
		if fm.errs[kind] != 1 {
			t.Errorf("errs[%s] = %d, want 1", kind, fm.errs[kind])
		}
	}
}

func TestComputeWithoutCache(t *testing.T) {
	svc, fm := newTestService()
	if _, err := svc.Compute(context.Background(), j2000, models.SourceStream, ""); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if fm.hits+fm.misses != 0 {
		t.Fatal("no cache lookups expected when caching is disabled")
	}
	if fm.aspects == 0 {
		t.Fatal("aspects should be counted")
	}
}

func TestComputeBatch(t *testing.T) {
	fp := &fakePublisher{}
	svc, _ := newTestService(WithPublisher(fp), WithBatch(3, 2))
	reqs := []models.ChartRequest{
		chartReq("2000-01-01", "12:00", "", 0, 0),
		chartReq("2001-02-29", "12:00", "", 0, 0),
		chartReq("1990-06-15", "08:30", "", 40.7128, -74.006),
	}

	items, err := svc.ComputeBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}
	for i, it := range items {
		if it.Index != i {
			t.Fatalf("item %d has index %d", i, it.Index)
		}
	}
	if items[0].Chart == nil || items[0].Chart.JulianDay != astro.J2000 {
		t.Fatalf("item 0 = %+v", items[0])
	}
	if items[1].Chart != nil || items[1].Error == "" {
		t.Fatalf("item 1 should fail: %+v", items[1])
	}
	if items[2].Chart == nil || items[2].Chart.Input.Hour != 8 {
		t.Fatalf("item 2 = %+v", items[2])
	}
	if len(fp.events) != 2 {
		t.Fatalf("events = %d, want 2", len(fp.events))
	}
	for _, ev := range fp.events {
		if ev.Source != models.SourceBatch {
			t.Fatalf("source = %s", ev.Source)
		}
	}

	if _, err := svc.ComputeBatch(context.Background(), append(reqs, reqs[0])); err == nil {
		t.Fatal("expected limit error")
	}
	if _, err := svc.ComputeBatch(context.Background(), nil); err == nil {
		t.Fatal("expected empty batch error")
	}
}

func TestComputeBatchIsolatesInvalidItems(t *testing.T) {
	fp := &fakePublisher{}
	svc, _ := newTestService(WithPublisher(fp))
	noLat := chartReq("2000-01-01", "12:00", "", 0, 0)
	noLat.Latitude = nil
	reqs := []models.ChartRequest{
		chartReq("2000-01-01", "", "", 0, 0),
		noLat,
		chartReq("2000-01-01", "12:00", "", 95, 0),
		chartReq("2000-01-01", "12:00", "", 10, 20),
	}

	items, err := svc.ComputeBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i, want := range []string{"time", "latitude", "latitude"} {
		if items[i].Chart != nil || !strings.Contains(items[i].Error, want) {
			t.Fatalf("item %d = %+v, want error on %s", i, items[i], want)
		}
	}
	if items[3].Chart == nil || items[3].Error != "" {
		t.Fatalf("valid item failed: %+v", items[3])
	}
	if len(fp.events) != 1 {
		t.Fatalf("events = %d, want 1", len(fp.events))
	}
}

func TestComputeKeepsNearbyMomentsApart(t *testing.T) {
	fc := newFakeCache()
	svc, fm := newTestService(WithCache(fc))
	ctx := context.Background()
	a := models.BirthMoment{Year: 1990, Month: 5, Day: 5, Hour: 10, Latitude: 10.00001, Longitude: 20}
	b := a
	b.Latitude = 10.00004

	first, err := svc.Compute(ctx, a, models.SourceHTTP, "")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := svc.Compute(ctx, b, models.SourceHTTP, "")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if fm.hits != 0 || fc.sets != 2 {
		t.Fatalf("hits=%d sets=%d, want two separate entries", fm.hits, fc.sets)
	}
	if second.Input != b {
		t.Fatalf("input = %+v, want %+v", second.Input, b)
	}
	if first.Ascendant == second.Ascendant {
		t.Fatal("moments 3e-5 degrees apart should differ in ascendant")
	}
}

func TestComputeKeysByModelParameters(t *testing.T) {
	fc := newFakeCache()
	fm := newFakeMetrics()
	ctx := context.Background()
	calcs := []*astro.Calculator{
		astro.NewCalculator(),
		astro.NewCalculator(astro.WithModel(astro.NewPeriodicModel(astro.WithPerturbation(3)))),
		astro.NewCalculator(astro.WithRetrogradeStep(2)),
	}
	for _, calc := range calcs {
		svc := NewChartService(calc, fm, WithCache(fc))
		if svc.ModelName() != "periodic" {
			t.Fatalf("model = %q", svc.ModelName())
		}
		if _, err := svc.Compute(ctx, j2000, models.SourceHTTP, ""); err != nil {
			t.Fatalf("compute: %v", err)
		}
	}
	if fm.hits != 0 || fc.sets != len(calcs) {
		t.Fatalf("hits=%d sets=%d, want one entry per parameter set", fm.hits, fc.sets)
	}
}

func TestComputeBatchCancelled(t *testing.T) {
	svc, _ := newTestService(WithBatch(10, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := svc.ComputeBatch(ctx, []models.ChartRequest{
		chartReq("2000-01-01", "12:00", "", 0, 0),
		chartReq("2000-01-02", "12:00", "", 0, 0),
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, it := range items {
		if it.Chart != nil && it.Error != "" {
			t.Fatalf("item %d has both chart and error", it.Index)
		}
		if it.Chart == nil && it.Error == "" {
			t.Fatalf("item %d has neither chart nor error", it.Index)
		}
	}
}

func TestServiceCatalogAccessors(t *testing.T) {
	svc, _ := newTestService(WithBatch(42, 0))
	if svc.ModelName() != "periodic" {
		t.Fatalf("model = %q", svc.ModelName())
	}
	if svc.BatchLimit() != 42 {
		t.Fatalf("limit = %d", svc.BatchLimit())
	}
	table := svc.AspectTable()
	table[0].Orb = 99
	if svc.AspectTable()[0].Orb == 99 {
		t.Fatal("AspectTable must return a copy")
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"NatalChart/internal/domain/models"
	"NatalChart/pkg/cache"
)

func sampleChart() *models.ChartResult {
	c := &models.ChartResult{
		Input:     models.BirthMoment{Year: 2000, Month: 1, Day: 1, Hour: 12, Latitude: 51.5, Longitude: -0.1278},
		JulianDay: 2451545.0,
		Ascendant: 280.3322,
		Midheaven: 190.3322,
		Aspects: []models.Aspect{
			{BodyA: models.Sun, BodyB: models.Mars, Type: models.Sextile, ExactAngle: 60, Separation: 61.25, Orb: 1.25},
		},
	}
	for i := range c.Positions {
		c.Positions[i] = models.BodyPosition{
			Body:       models.Body(i),
			Longitude:  math.Mod(float64(i)*31.7+0.123456789, 360),
			Sign:       models.Sign(i),
			House:      i + 1,
			Retrograde: i >= 10,
			Speed:      -0.05,
		}
	}
	return c
}

func TestChartCacheRoundTrip(t *testing.T) {
	mem := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mem.Close()
	cc := NewChartCache(mem, time.Hour)
	ctx := context.Background()

	want := sampleChart()
	key := ChartKey("periodic", want.Input)

	if _, ok, err := cc.Get(ctx, key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := cc.Set(ctx, key, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cc.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	for i := range want.Positions {
		if got.Positions[i] != want.Positions[i] {
			t.Fatalf("position %d: got %+v want %+v", i, got.Positions[i], want.Positions[i])
		}
	}
	if len(got.Aspects) != 1 || got.Aspects[0] != want.Aspects[0] {
		t.Fatalf("aspects: %+v", got.Aspects)
	}
}

func TestChartCacheSetNil(t *testing.T) {
	mem := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mem.Close()
	if err := NewChartCache(mem, time.Minute).Set(context.Background(), "k", nil); err == nil {
		t.Fatal("expected error for nil chart")
	}
}

func TestChartKeySeparatesModels(t *testing.T) {
	m := models.BirthMoment{Year: 1990, Month: 6, Day: 15, Hour: 8, Minute: 30, Latitude: 40.7128, Longitude: -74.006}
	a, b := ChartKey("periodic", m), ChartKey("mean-motion", m)
	if a == b {
		t.Fatal("keys must differ across models")
	}
	if !strings.HasPrefix(a, "chart:periodic:") {
		t.Fatalf("key = %q", a)
	}
}

func TestChartKeyKeepsFullPrecision(t *testing.T) {
	a := models.BirthMoment{Year: 1990, Month: 5, Day: 5, Hour: 10, Latitude: 10.00001, Longitude: 20}
	b := a
	b.Latitude = 10.00004
	if ChartKey("periodic", a) == ChartKey("periodic", b) {
		t.Fatal("moments 3e-5 degrees apart share a key")
	}

	zero := models.BirthMoment{Year: 2000, Month: 1, Day: 1, Hour: 12}
	negZero := zero
	negZero.Longitude = math.Copysign(0, -1)
	if ChartKey("periodic", zero) != ChartKey("periodic", negZero) {
		t.Fatal("-0 and 0 are the same longitude")
	}
}

type fakeProducer struct {
	topic  string
	key    []byte
	value  []byte
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.topic, f.key, f.value = topic, key, b
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaPublisher(fp, "chart.computed")
	ev := &models.ChartEvent{ID: "id-1", Source: models.SourceKafka, Key: "chart:periodic:x", Chart: *sampleChart()}

	if err := pub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "chart.computed" || string(fp.key) != ev.Key {
		t.Fatalf("topic=%q key=%q", fp.topic, fp.key)
	}
	var decoded models.ChartEvent
	if err := json.Unmarshal(fp.value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "id-1" || decoded.Source != models.SourceKafka {
		t.Fatalf("decoded = %+v", decoded)
	}

	if err := pub.Publish(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil event")
	}
	fp.err = errors.New("broker down")
	if err := pub.Publish(context.Background(), ev); err == nil {
		t.Fatal("expected producer error")
	}
	_ = pub.Close()
	if !fp.closed {
		t.Fatal("producer not closed")
	}
}

package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	xhttp "NatalChart/pkg/http"
	applogger "NatalChart/pkg/logger"
)

type countingCloser struct {
	order *[]string
	name  string
}

func (c countingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	srv := xhttp.NewServer(nil, xhttp.WithPort(0), xhttp.WithMetricsPath(""))
	var order []string
	var stopped atomic.Bool

	app := New(applogger.Nop(), srv,
		WithBackground("sweeper", func(stop <-chan struct{}) {
			<-stop
			stopped.Store(true)
		}),
		WithCloser("publisher", countingCloser{order: &order, name: "publisher"}),
		WithCloser("cache", countingCloser{order: &order, name: "cache"}),
		WithShutdownTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	if !stopped.Load() {
		t.Fatal("background task not stopped")
	}
	if len(order) != 2 || order[0] != "publisher" || order[1] != "cache" {
		t.Fatalf("close order = %v", order)
	}
}

func TestWithCloserIgnoresNil(t *testing.T) {
	app := New(nil, nil, WithCloser("nil", nil))
	if len(app.closers) != 0 {
		t.Fatal("nil closer should be skipped")
	}
}

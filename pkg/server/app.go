package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xhttp "NatalChart/pkg/http"
	pkgkafka "NatalChart/pkg/kafka"
	applogger "NatalChart/pkg/logger"
)

// Option configures App.
type Option func(*App)

// WithConsumer runs c with handler h alongside the HTTP server.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.kh = h
	}
}

// WithBackground runs fn until shutdown. fn must return once stop is closed.
func WithBackground(name string, fn func(stop <-chan struct{})) Option {
	return func(a *App) {
		a.background = append(a.background, task{name: name, run: fn})
	}
}

// WithCloser closes c during shutdown, after the consumer has stopped.
// Closers run in registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, namedCloser{name: name, c: c})
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

type task struct {
	name string
	run  func(stop <-chan struct{})
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	log             *applogger.Logger
	httpServer      *xhttp.Server
	consumer        *pkgkafka.Consumer
	kh              pkgkafka.MessageHandler
	background      []task
	closers         []namedCloser
	shutdownTimeout time.Duration
}

// New creates a new App instance with all dependencies.
func New(l *applogger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{log: l, httpServer: httpServer, shutdownTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done or the
// HTTP listener fails. Shutdown always runs before it returns.
func (a *App) RunContext(ctx context.Context) error {
	stopCh := make(chan struct{})
	var bg sync.WaitGroup
	for _, t := range a.background {
		bg.Add(1)
		go func(t task) {
			defer bg.Done()
			t.run(stopCh)
		}(t)
		a.log.Debug("background task started", applogger.String("task", t.name))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
			close(stopCh)
			bg.Wait()
			a.closeAll()
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	errCh := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			runErr = err
		}
	}

	a.shutdown()
	close(stopCh)
	bg.Wait()
	a.closeAll()
	a.log.Info("shutdown complete")
	return runErr
}

// shutdown stops intake: HTTP first, then the consumer.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
}

func (a *App) closeAll() {
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("component", nc.name), applogger.Error(err))
		}
	}
}

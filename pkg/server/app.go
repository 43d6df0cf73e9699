package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the service lifecycle: the HTTP server and, when kafka is
// enabled, the analysis request consumer.
type App struct {
	httpServer      *xhttp.Server
	consumer        *pkgkafka.Consumer
	l               *applogger.Logger
	shutdownTimeout time.Duration
}

// New creates an App. consumer may be nil.
func New(srv *xhttp.Server, consumer *pkgkafka.Consumer, l *applogger.Logger, shutdownTimeout time.Duration) *App {
	if l == nil {
		l = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		httpServer:      srv,
		consumer:        consumer,
		l:               l,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts every component and blocks until ctx is done, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer == nil {
		return errors.New("http server is required")
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.l.Info("kafka consumer started")
	}

	if err := a.httpServer.Start(); err != nil {
		a.stopConsumer()
		return fmt.Errorf("start http server: %w", err)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) stopConsumer() {
	if a.consumer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := a.consumer.Stop(ctx); err != nil {
		a.l.Warn("kafka consumer stop error", applogger.Error(err))
	}
}

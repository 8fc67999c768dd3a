// Package server provides run lifecycle management: services are started
// together, the run ends when any of them finishes or a termination signal
// arrives, and everything is stopped in reverse order.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service represents a component that runs until its work is done or ctx is
// cancelled, and may hold resources released by Stop.
type Service interface {
	// Start runs the service. It must return promptly once ctx is done.
	Start(ctx context.Context) error
	// Stop releases the service's resources. It is called after every
	// Start has returned.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StartFn waits for ctx, which suits pure resources such as stores.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error {
	if f.StartFn == nil {
		<-ctx.Done()
		return nil
	}
	return f.StartFn(ctx)
}

// Stop calls the underlying stop function.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named service for lifecycle management.
// Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

type exit struct {
	name string
	err  error
}

// Run starts all services and blocks until one of them returns, a
// termination signal (SIGINT or SIGTERM) arrives, or ctx is done. The shared
// context is then cancelled, every Start is awaited, and services are
// stopped in reverse order.
//
// Postcondition: All services are stopped when this method returns. The
// first non-nil Start error is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	l.mu.Lock()
	services := make([]namedService, len(l.services))
	copy(services, l.services)
	l.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exitCh := make(chan exit, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Debug("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Start(ctx)
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				err = fmt.Errorf("service %s: %w", ns.name, err)
			}
			exitCh <- exit{name: ns.name, err: err}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var firstErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case e := <-exitCh:
		firstErr = e.err
		l.logger.Debug("service finished, shutting down", zap.String("service", e.name))
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	cancel()
	wg.Wait()
	close(exitCh)
	for e := range exitCh {
		if firstErr == nil {
			firstErr = e.err
		}
	}

	l.shutdown(services)

	l.logger.Debug("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return firstErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Debug("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
}

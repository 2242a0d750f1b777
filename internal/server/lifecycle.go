// Package server runs the planner's long-lived services and shuts them down
// in reverse order on a termination signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service stops
// or fails; Stop must make a blocked Start return.
type Service interface {
	Start() error
	Stop(ctx context.Context) error
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StartFn blocks until Stop is called.
type FuncService struct {
	StartFn func() error
	StopFn  func(ctx context.Context) error

	init      sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// Start calls the start function.
func (f *FuncService) Start() error {
	if f.StartFn != nil {
		return f.StartFn()
	}
	<-f.stopped()
	return nil
}

// Stop calls the stop function and releases a blocked Start.
func (f *FuncService) Stop(ctx context.Context) error {
	done := f.stopped()
	defer f.closeOnce.Do(func() { close(done) })
	if f.StopFn == nil {
		return nil
	}
	return f.StopFn(ctx)
}

func (f *FuncService) stopped() chan struct{} {
	f.init.Do(func() { f.done = make(chan struct{}) })
	return f.done
}

// HTTPService serves an http.Server on a pre-bound listener so the address
// is known before Start is called.
type HTTPService struct {
	srv *http.Server
	ln  net.Listener
}

// NewHTTPService binds srv.Addr.
//
// Postcondition: Returns a service whose Addr is the bound address, or an
// error if the address cannot be bound.
func NewHTTPService(srv *http.Server) (*HTTPService, error) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", srv.Addr, err)
	}
	return &HTTPService{srv: srv, ln: ln}, nil
}

// Addr returns the bound listener address.
func (h *HTTPService) Addr() string {
	return h.ln.Addr().String()
}

// Start serves until Stop is called.
func (h *HTTPService) Start() error {
	if err := h.srv.Serve(h.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires.
func (h *HTTPService) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration
	services        []namedService
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager. Each service gets at most
// shutdownTimeout to stop.
//
// Precondition: logger must be non-nil; shutdownTimeout must be positive.
func NewLifecycle(logger *zap.Logger, shutdownTimeout time.Duration) *Lifecycle {
	return &Lifecycle{logger: logger, shutdownTimeout: shutdownTimeout}
}

// Add registers a named service. Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until SIGINT or SIGTERM is received, a
// service fails, or ctx is cancelled. Services are then stopped in reverse order.
//
// Postcondition: All services are stopped when Run returns. The error is the
// first service failure joined with any stop errors, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(l.services))
	for _, ns := range l.services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.service.Start(); err != nil {
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	var runErr error
	select {
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	}

	stopErr := l.shutdown()
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return errors.Join(runErr, stopErr)
}

func (l *Lifecycle) shutdown() error {
	var errs []error
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		svcStart := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
		err := ns.service.Stop(ctx)
		cancel()
		if err != nil {
			l.logger.Warn("service stop failed", zap.String("service", ns.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("stopping %s: %w", ns.name, err))
			continue
		}
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	return errors.Join(errs...)
}

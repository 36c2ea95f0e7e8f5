// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package reactor drives a transport.ListenerSocket from a single goroutine:
// it waits for accept readiness on a netpoll.Poller, drains the accept queue
// and hands every connection to a Handler.
package reactor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/suro/config"
	gerrors "github.com/tochemey/suro/errors"
	imetric "github.com/tochemey/suro/internal/metric"
	"github.com/tochemey/suro/internal/netaddr"
	"github.com/tochemey/suro/log"
	"github.com/tochemey/suro/netpoll"
	"github.com/tochemey/suro/transport"
)

const defaultEventBatchSize = 64

// Reactor owns the listening socket, the poller and the handler goroutines.
// Start and Stop may be called from any goroutine. Only the loop goroutine
// touches the accept path.
type Reactor struct {
	config         *config.Config
	handler        Handler
	logger         log.Logger
	meterProvider  metric.MeterProvider
	eventBatchSize int
	listenerOpts   []transport.ListenerOption

	mu             sync.RWMutex
	listener       *transport.ListenerSocket
	poller         *netpoll.Poller
	metrics        *imetric.ListenerMetric
	handlers       *errgroup.Group
	handlerCtx     context.Context
	cancelHandlers context.CancelFunc
	stopping       chan struct{}
	loopDone       chan struct{}

	started *atomic.Bool
}

// New creates a Reactor from a validated copy of cfg. Nothing is bound until
// Start.
func New(cfg *config.Config, handler Handler, opts ...Option) (*Reactor, error) {
	snapshot, err := config.Snapshot(cfg)
	if err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, gerrors.ErrHandlerRequired
	}

	r := &Reactor{
		config:         snapshot,
		handler:        handler,
		logger:         snapshot.Logger,
		eventBatchSize: defaultEventBatchSize,
		started:        atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(r)
	}
	return r, nil
}

// Start binds the listening socket, registers it with a fresh poller and
// launches the accept loop. The whole sequence is bounded by
// config.StartupTimeout.
func (r *Reactor) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return gerrors.ErrReactorStarted
	}

	if r.config.StartupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.StartupTimeout)
		defer cancel()
	}

	if err := r.setup(ctx); err != nil {
		r.started.Store(false)
		return err
	}

	r.mu.RLock()
	addr := r.listener.Addr()
	r.mu.RUnlock()

	r.logger.Infof("suro listener started on %s", addr)
	return nil
}

func (r *Reactor) setup(ctx context.Context) error {
	metrics, err := imetric.NewListenerMetric(imetric.New(imetric.WithMeterProvider(r.meterProvider)).Meter())
	if err != nil {
		return fmt.Errorf("failed to create listener metrics: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reactor start: %w", err)
	}

	listener, err := transport.NewListenerSocket(r.config, r.listenerOpts...)
	if err != nil {
		return err
	}

	listener.Listen()

	poller, err := netpoll.NewPoller()
	if err != nil {
		listener.Close()
		return gerrors.NewTransportSetupError(r.config.BindAddress(), err)
	}

	listener.RegisterWithMultiplexer(poller)
	if listener.State() != transport.StateListening {
		listener.Close()
		_ = poller.Close()
		return gerrors.NewTransportSetupError(r.config.BindAddress(), errors.New("server socket could not be registered with the poller"))
	}

	if err := ctx.Err(); err != nil {
		listener.Close()
		_ = poller.Close()
		return fmt.Errorf("reactor start: %w", err)
	}

	// handlers outlive the start context and are cancelled by Stop
	handlerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handlers := new(errgroup.Group)
	if r.config.MaxInFlightHandlers > 0 {
		handlers.SetLimit(r.config.MaxInFlightHandlers)
	}

	stopping := make(chan struct{})
	loopDone := make(chan struct{})

	r.mu.Lock()
	r.listener = listener
	r.poller = poller
	r.metrics = metrics
	r.handlers = handlers
	r.handlerCtx = handlerCtx
	r.cancelHandlers = cancel
	r.stopping = stopping
	r.loopDone = loopDone
	r.mu.Unlock()

	go r.loop(listener, poller, stopping, loopDone)
	return nil
}

// Stop interrupts the listener, waits for the accept loop to exit and then
// for in-flight handlers, bounded by ctx. The loop releases the poller on
// its way out, even when ctx expires first.
func (r *Reactor) Stop(ctx context.Context) error {
	if !r.started.CompareAndSwap(true, false) {
		return gerrors.ErrReactorNotStarted
	}

	r.mu.RLock()
	listener := r.listener
	poller := r.poller
	handlers := r.handlers
	cancel := r.cancelHandlers
	stopping := r.stopping
	loopDone := r.loopDone
	r.mu.RUnlock()

	close(stopping)
	listener.Interrupt()
	if err := poller.Wake(); err != nil && !errors.Is(err, netpoll.ErrClosed) {
		r.logger.Warnf("could not wake the poller: %v", err)
	}

	var err error
	select {
	case <-loopDone:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for the accept loop: %w", ctx.Err()))
	}

	cancel()
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- handlers.Wait()
	}()

	select {
	case werr := <-waitDone:
		err = multierr.Append(err, werr)
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for connection handlers: %w", ctx.Err()))
	}

	r.logger.Infof("suro listener on %s stopped", listener.Addr())
	return err
}

// Addr returns the bound address of the listening socket, or nil before Start
func (r *Reactor) Addr() *net.TCPAddr {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// AdvertiseAddr returns the host:port peers should dial. When bound on the
// wildcard address a private interface address is used, then a public one.
func (r *Reactor) AdvertiseAddr() (string, error) {
	if !r.started.Load() {
		return "", gerrors.ErrReactorNotStarted
	}

	addr := r.Addr()
	if addr == nil {
		return "", gerrors.ErrReactorNotStarted
	}
	return netaddr.AdvertiseAddress(addr.String())
}

func (r *Reactor) loop(listener *transport.ListenerSocket, poller *netpoll.Poller, stopping <-chan struct{}, done chan struct{}) {
	defer func() {
		if err := poller.Close(); err != nil {
			r.logger.Warnf("could not close the poller: %v", err)
		}
		close(done)
	}()

	timeout := r.config.PollTimeout
	if timeout <= 0 {
		timeout = config.DefaultPollTimeout
	}

	events := make([]netpoll.Event, r.eventBatchSize)
	for {
		n, err := poller.Wait(events, timeout)
		if err != nil {
			if !errors.Is(err, netpoll.ErrClosed) {
				r.logger.Errorf("accept loop stopped on poll failure: %v", err)
			}
			return
		}

		if listener.State() == transport.StateClosed {
			return
		}

		for _, event := range events[:n] {
			if event.Ready&netpoll.Acceptable == 0 {
				continue
			}

			switch r.drain(listener) {
			case drainClosed:
				return
			case drainFailed:
				// the connection that failed is still queued and keeps the
				// level-triggered listener readable
				if !backoff(timeout, stopping) {
					return
				}
			}
			break
		}
	}
}

type drainResult int

const (
	drainEmpty drainResult = iota
	drainClosed
	drainFailed
)

// drain accepts until the queue is empty, the listener is closed or accept
// fails with an I/O error.
func (r *Reactor) drain(listener *transport.ListenerSocket) drainResult {
	for {
		conn, err := listener.AcceptNonBlocking()
		if err != nil {
			if errors.Is(err, gerrors.ErrNotOpen) {
				return drainClosed
			}

			var ioErr *gerrors.TransportIOError
			if errors.As(err, &ioErr) && ioErr.Op() == "setsockopt" {
				r.metrics.RecordTuningFailure(r.handlerCtx)
				r.logger.Warnf("discarded connection on %s: %v", listener.Addr(), err)
				continue
			}

			r.metrics.RecordAcceptError(r.handlerCtx)
			r.logger.Warnf("accept failed on %s: %v", listener.Addr(), err)
			return drainFailed
		}

		if conn == nil {
			return drainEmpty
		}

		r.metrics.RecordAccepted(r.handlerCtx)
		r.dispatch(conn)
	}
}

// backoff waits for d. It returns false when stopping is closed first.
func backoff(d time.Duration, stopping <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-stopping:
		return false
	}
}

func (r *Reactor) dispatch(conn *transport.AcceptedConnection) {
	ctx := r.handlerCtx
	started := r.handlers.TryGo(func() error {
		r.metrics.HandlerStarted(ctx)
		defer r.metrics.HandlerDone(ctx)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Errorf("connection handler for %s panicked: %v", conn.RemoteAddr(), rec)
				_ = conn.Close()
			}
		}()

		r.handler.Handle(ctx, conn)
		return nil
	})

	if !started {
		r.metrics.RecordHandlerRejected(ctx)
		r.logger.Warnf("rejected connection from %s: %d handlers in flight", conn.RemoteAddr(), r.config.MaxInFlightHandlers)
		if err := conn.Close(); err != nil {
			r.logger.Warnf("could not close rejected connection: %v", err)
		}
	}
}

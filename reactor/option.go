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

package reactor

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/suro/transport"
)

// Handler takes ownership of an accepted connection. It runs on its own
// goroutine and must close the connection when done.
type Handler interface {
	Handle(ctx context.Context, conn *transport.AcceptedConnection)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, conn *transport.AcceptedConnection)

var _ Handler = HandlerFunc(nil)

// Handle calls f(ctx, conn)
func (f HandlerFunc) Handle(ctx context.Context, conn *transport.AcceptedConnection) {
	f(ctx, conn)
}

// Option is the interface that applies a reactor option.
type Option interface {
	// Apply sets the Option value of a reactor.
	Apply(reactor *Reactor)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Reactor)

// Apply applies the option
func (f OptionFunc) Apply(r *Reactor) {
	f(r)
}

// WithMeterProvider sets the OpenTelemetry meter provider used for the
// accept and handler instruments. The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(r *Reactor) {
		r.meterProvider = provider
	})
}

// WithEventBatchSize sets how many readiness events a single poll may return
func WithEventBatchSize(size int) Option {
	return OptionFunc(func(r *Reactor) {
		if size > 0 {
			r.eventBatchSize = size
		}
	})
}

// WithListenerOptions passes options to the listening socket created by Start
func WithListenerOptions(opts ...transport.ListenerOption) Option {
	return OptionFunc(func(r *Reactor) {
		r.listenerOpts = append(r.listenerOpts, opts...)
	})
}

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

package metric

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// ListenerMetric groups the instruments describing the accept path.
//
// Instruments:
//   - listener.accepted.count         (Int64Counter)
//   - listener.accept.errors.count    (Int64Counter)
//   - listener.tuning.failures.count  (Int64Counter)
//   - reactor.handlers.rejected.count (Int64Counter)
//   - reactor.handlers.inflight       (Int64UpDownCounter)
type ListenerMetric struct {
	acceptedCount       metric.Int64Counter
	acceptErrorsCount   metric.Int64Counter
	tuningFailuresCount metric.Int64Counter
	handlersRejected    metric.Int64Counter
	handlersInFlight    metric.Int64UpDownCounter
}

// NewListenerMetric creates the accept-path instruments using the provided Meter.
// It returns an error if any instrument cannot be created.
func NewListenerMetric(meter metric.Meter) (*ListenerMetric, error) {
	var instruments ListenerMetric
	var err error

	if instruments.acceptedCount, err = meter.Int64Counter(
		"listener.accepted.count",
		metric.WithDescription("Total number of connections accepted and tuned"),
	); err != nil {
		return nil, err
	}

	if instruments.acceptErrorsCount, err = meter.Int64Counter(
		"listener.accept.errors.count",
		metric.WithDescription("Total number of accept attempts that failed with an I/O error"),
	); err != nil {
		return nil, err
	}

	if instruments.tuningFailuresCount, err = meter.Int64Counter(
		"listener.tuning.failures.count",
		metric.WithDescription("Total number of accepted connections discarded because socket tuning failed"),
	); err != nil {
		return nil, err
	}

	if instruments.handlersRejected, err = meter.Int64Counter(
		"reactor.handlers.rejected.count",
		metric.WithDescription("Total number of accepted connections closed because the handler limit was reached"),
	); err != nil {
		return nil, err
	}

	if instruments.handlersInFlight, err = meter.Int64UpDownCounter(
		"reactor.handlers.inflight",
		metric.WithDescription("Number of connection handlers currently running"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// RecordAccepted counts one accepted connection
func (x *ListenerMetric) RecordAccepted(ctx context.Context) {
	x.acceptedCount.Add(ctx, 1)
}

// RecordAcceptError counts one failed accept
func (x *ListenerMetric) RecordAcceptError(ctx context.Context) {
	x.acceptErrorsCount.Add(ctx, 1)
}

// RecordTuningFailure counts one connection discarded by the tuner
func (x *ListenerMetric) RecordTuningFailure(ctx context.Context) {
	x.tuningFailuresCount.Add(ctx, 1)
}

// RecordHandlerRejected counts one connection rejected by the handler limit
func (x *ListenerMetric) RecordHandlerRejected(ctx context.Context) {
	x.handlersRejected.Add(ctx, 1)
}

// HandlerStarted increments the in-flight handler gauge
func (x *ListenerMetric) HandlerStarted(ctx context.Context) {
	x.handlersInFlight.Add(ctx, 1)
}

// HandlerDone decrements the in-flight handler gauge
func (x *ListenerMetric) HandlerDone(ctx context.Context) {
	x.handlersInFlight.Add(ctx, -1)
}

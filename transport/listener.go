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

package transport

import (
	"net"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/suro/config"
	"github.com/tochemey/suro/log"
)

// ListenerSocket owns one bound, non-blocking listening socket.
//
// Registration and accept are expected to run on the reactor goroutine.
// Close and Interrupt are safe from any goroutine: the descriptor is only
// released under the write side of mu, while accept and registration hold
// the read side for the duration of a single non-blocking syscall.
type ListenerSocket struct {
	config      *config.Config
	tuner       *ConnectionTuner
	extraTuning []func(fd int) error
	logger      log.Logger

	mu     sync.RWMutex
	fd     int
	addr   *net.TCPAddr
	state  *atomic.Int32
	closed *atomic.Bool
}

// ListenerOption is the interface that applies a listener option.
type ListenerOption interface {
	// Apply sets the Option value of a listener.
	Apply(listener *ListenerSocket)
}

var _ ListenerOption = ListenerOptionFunc(nil)

// ListenerOptionFunc implements the ListenerOption interface.
type ListenerOptionFunc func(*ListenerSocket)

// Apply applies the option
func (f ListenerOptionFunc) Apply(l *ListenerSocket) {
	f(l)
}

// WithTuning appends a tuning step run on every accepted descriptor after
// the keepalive, buffer and timeout options, e.g. to set TCP_NODELAY.
// A failing step discards the connection like any other tuning failure.
func WithTuning(step func(fd int) error) ListenerOption {
	return ListenerOptionFunc(func(l *ListenerSocket) {
		if step != nil {
			l.extraTuning = append(l.extraTuning, step)
		}
	})
}

// State returns the current lifecycle state
func (l *ListenerSocket) State() State {
	return State(l.state.Load())
}

// Addr returns the bound address. With port 0 it carries the ephemeral
// port picked by the kernel.
func (l *ListenerSocket) Addr() *net.TCPAddr {
	addr := *l.addr
	return &addr
}

// Fd returns the listening descriptor, or -1 once closed
func (l *ListenerSocket) Fd() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fd
}

// Tuner returns the policy applied to accepted connections
func (l *ListenerSocket) Tuner() *ConnectionTuner {
	return l.tuner
}

// Interrupt stops the listener from another goroutine. It is Close.
func (l *ListenerSocket) Interrupt() {
	l.Close()
}

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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned when an operation is attempted on a listener
	// that has been closed or was never opened.
	ErrNotOpen = errors.New("listener is not open")

	// ErrUnsupportedPlatform is returned when the non-blocking listener is
	// constructed on a platform without epoll/accept4 support.
	ErrUnsupportedPlatform = errors.New("non-blocking listener is not supported on this platform")

	// ErrInvalidPort is returned when the configured listening port is outside [0, 65535].
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidBufferSize is returned when a socket buffer size is not strictly positive.
	ErrInvalidBufferSize = errors.New("invalid socket buffer size")

	// ErrInvalidTimeout is returned when a timeout value is negative.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidBacklog is returned when the listen backlog is negative.
	ErrInvalidBacklog = errors.New("invalid listen backlog")

	// ErrHandlerRequired is returned when a reactor is created without a connection handler.
	ErrHandlerRequired = errors.New("connection handler is required")

	// ErrReactorStarted is returned when Start is called on a running reactor.
	ErrReactorStarted = errors.New("reactor already started")

	// ErrReactorNotStarted is returned when the reactor is used before Start.
	ErrReactorNotStarted = errors.New("reactor is not started")

	// ErrConfigRequired is returned when a listener or a reactor is built without a config.
	ErrConfigRequired = errors.New("config is required")
)

// TransportSetupError is returned when the listening socket cannot be
// created or bound. It is fatal to construction.
type TransportSetupError struct {
	addr string
	err  error
}

// enforce compilation error
var _ error = (*TransportSetupError)(nil)

// NewTransportSetupError returns an instance of TransportSetupError
func NewTransportSetupError(addr string, err error) *TransportSetupError {
	return &TransportSetupError{addr: addr, err: err}
}

// Error implements the standard error interface
func (e *TransportSetupError) Error() string {
	return fmt.Sprintf("could not create server socket on address %s: %v", e.addr, e.err)
}

// Addr returns the address the listener attempted to bind.
func (e *TransportSetupError) Addr() string {
	return e.addr
}

func (e *TransportSetupError) Unwrap() error {
	return e.err
}

// TransportIOError wraps an OS level I/O failure that happened while
// accepting or tuning a connection. The listener stays open.
type TransportIOError struct {
	op  string
	err error
}

var _ error = (*TransportIOError)(nil)

// NewTransportIOError returns an instance of TransportIOError
func NewTransportIOError(op string, err error) *TransportIOError {
	return &TransportIOError{op: op, err: err}
}

// Error implements the standard error interface
func (e *TransportIOError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.op, e.err)
}

// Op returns the socket operation that failed (accept, setsockopt...).
func (e *TransportIOError) Op() string {
	return e.op
}

func (e *TransportIOError) Unwrap() error {
	return e.err
}

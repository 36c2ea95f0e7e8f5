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

package config

import (
	"time"

	"github.com/tochemey/suro/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithSendBufferBytes sets the SO_SNDBUF applied to accepted connections
func WithSendBufferBytes(size int) Option {
	return OptionFunc(func(config *Config) {
		config.SocketSendBufferBytes = size
	})
}

// WithRecvBufferBytes sets the SO_RCVBUF applied to accepted connections
func WithRecvBufferBytes(size int) Option {
	return OptionFunc(func(config *Config) {
		config.SocketRecvBufferBytes = size
	})
}

// WithClientIdleTimeout sets the read-idle timeout of accepted connections
func WithClientIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.ClientIdleTimeout = timeout
	})
}

// WithStatusServerPort sets the administrative port
func WithStatusServerPort(port int) Option {
	return OptionFunc(func(config *Config) {
		config.StatusServerPort = port
	})
}

// WithListenBacklog sets the accept queue length
func WithListenBacklog(backlog int) Option {
	return OptionFunc(func(config *Config) {
		config.ListenBacklog = backlog
	})
}

// WithStartupTimeout sets the reactor startup timeout
func WithStartupTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.StartupTimeout = timeout
	})
}

// WithPollTimeout sets the maximum duration of a single multiplexer wait
func WithPollTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.PollTimeout = timeout
	})
}

// WithMaxInFlightHandlers caps the number of concurrently running handlers
func WithMaxInFlightHandlers(limit int) Option {
	return OptionFunc(func(config *Config) {
		config.MaxInFlightHandlers = limit
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.Logger = logger
	})
}

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

//go:build !linux

package transport

import (
	"net"

	"github.com/tochemey/suro/config"
	"github.com/tochemey/suro/errors"
	"github.com/tochemey/suro/netpoll"
)

// NewListenerSocket fails on platforms without accept4 and epoll.
func NewListenerSocket(cfg *config.Config, _ ...ListenerOption) (*ListenerSocket, error) {
	if cfg == nil {
		return nil, errors.NewTransportSetupError("", errors.ErrConfigRequired)
	}
	return nil, errors.NewTransportSetupError(cfg.BindAddress(), errors.ErrUnsupportedPlatform)
}

// Listen is a no-op on unsupported platforms.
func (l *ListenerSocket) Listen() {}

// RegisterWithMultiplexer is a no-op on unsupported platforms.
func (l *ListenerSocket) RegisterWithMultiplexer(netpoll.Multiplexer) {}

// AcceptNonBlocking always reports a closed listener on unsupported platforms.
func (l *ListenerSocket) AcceptNonBlocking() (*AcceptedConnection, error) {
	return nil, errors.ErrNotOpen
}

// Close is a no-op on unsupported platforms.
func (l *ListenerSocket) Close() {}

// Apply fails on unsupported platforms.
func (t *ConnectionTuner) Apply(int) error {
	return errors.NewTransportIOError("setsockopt", errors.ErrUnsupportedPlatform)
}

// SocketOptions fails on unsupported platforms.
func (c *AcceptedConnection) SocketOptions() (SocketOptions, error) {
	return SocketOptions{}, errors.ErrUnsupportedPlatform
}

// NetConn fails on unsupported platforms.
func (c *AcceptedConnection) NetConn() (net.Conn, error) {
	return nil, errors.ErrUnsupportedPlatform
}

// Close is a no-op on unsupported platforms.
func (c *AcceptedConnection) Close() error {
	return nil
}

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
	"syscall"
	"time"

	"github.com/tochemey/suro/config"
	"github.com/tochemey/suro/errors"
)

// ConnectionTuner is the socket policy applied to every accepted connection:
// keepalive on, send and receive buffers set from configuration, and a
// read-idle timeout. It holds no mutable state.
type ConnectionTuner struct {
	sendBufferBytes int
	recvBufferBytes int
	readIdleTimeout time.Duration
}

// NewConnectionTuner builds the tuning policy from the configuration snapshot
func NewConnectionTuner(cfg *config.Config) *ConnectionTuner {
	return &ConnectionTuner{
		sendBufferBytes: cfg.SocketSendBufferBytes,
		recvBufferBytes: cfg.SocketRecvBufferBytes,
		readIdleTimeout: cfg.ClientIdleTimeout,
	}
}

// SendBufferBytes returns the SO_SNDBUF applied to connections
func (t *ConnectionTuner) SendBufferBytes() int {
	return t.sendBufferBytes
}

// RecvBufferBytes returns the SO_RCVBUF applied to connections
func (t *ConnectionTuner) RecvBufferBytes() int {
	return t.recvBufferBytes
}

// ReadIdleTimeout returns the read-idle timeout applied to connections.
// Zero means no timeout.
func (t *ConnectionTuner) ReadIdleTimeout() time.Duration {
	return t.readIdleTimeout
}

// TuneConn applies the policy to a connection accepted through the standard
// library, e.g. a *net.TCPConn.
func (t *ConnectionTuner) TuneConn(conn syscall.Conn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return errors.NewTransportIOError("syscallconn", err)
	}

	var tuneErr error
	if err := rawConn.Control(func(fd uintptr) {
		tuneErr = t.Apply(int(fd))
	}); err != nil {
		return errors.NewTransportIOError("control", err)
	}
	return tuneErr
}

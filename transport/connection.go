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
	"time"

	"go.uber.org/atomic"
)

// SocketOptions is what the kernel reports for an accepted connection.
//
// Linux doubles SO_SNDBUF and SO_RCVBUF on set to account for bookkeeping
// overhead, so the reported buffer sizes are twice the configured values
// (capped by net.core.wmem_max and net.core.rmem_max).
type SocketOptions struct {
	KeepAlive       bool
	SendBufferBytes int
	RecvBufferBytes int
	ReadTimeout     time.Duration
}

// AcceptedConnection is a freshly accepted, tuned, non-blocking connection.
// Ownership moves to the caller: the listener never touches it again.
type AcceptedConnection struct {
	fd              int
	remoteAddr      *net.TCPAddr
	localAddr       *net.TCPAddr
	readIdleTimeout time.Duration
	sendBufferBytes int
	recvBufferBytes int
	closed          *atomic.Bool
}

func newAcceptedConnection(fd int, remote, local *net.TCPAddr, tuner *ConnectionTuner) *AcceptedConnection {
	return &AcceptedConnection{
		fd:              fd,
		remoteAddr:      remote,
		localAddr:       local,
		readIdleTimeout: tuner.ReadIdleTimeout(),
		sendBufferBytes: tuner.SendBufferBytes(),
		recvBufferBytes: tuner.RecvBufferBytes(),
		closed:          atomic.NewBool(false),
	}
}

// Fd returns the non-blocking socket descriptor
func (c *AcceptedConnection) Fd() int {
	return c.fd
}

// RemoteAddr returns the peer address
func (c *AcceptedConnection) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// LocalAddr returns the listening address the connection arrived on
func (c *AcceptedConnection) LocalAddr() net.Addr {
	return c.localAddr
}

// ReadIdleTimeout returns the read-idle timeout set on the socket.
// Zero means the transport is solely responsible for detecting dead peers.
func (c *AcceptedConnection) ReadIdleTimeout() time.Duration {
	return c.readIdleTimeout
}

// SendBufferBytes returns the configured SO_SNDBUF
func (c *AcceptedConnection) SendBufferBytes() int {
	return c.sendBufferBytes
}

// RecvBufferBytes returns the configured SO_RCVBUF
func (c *AcceptedConnection) RecvBufferBytes() int {
	return c.recvBufferBytes
}

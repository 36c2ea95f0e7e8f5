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

//go:build linux

package transport

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/tochemey/suro/errors"
)

// SocketOptions reads back the tuned options from the kernel
func (c *AcceptedConnection) SocketOptions() (SocketOptions, error) {
	if c.closed.Load() {
		return SocketOptions{}, errors.ErrNotOpen
	}

	keepAlive, err := getSockOpt(c.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, "SO_KEEPALIVE")
	if err != nil {
		return SocketOptions{}, errors.NewTransportIOError("getsockopt", err)
	}

	sendBuffer, err := getSockOpt(c.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, "SO_SNDBUF")
	if err != nil {
		return SocketOptions{}, errors.NewTransportIOError("getsockopt", err)
	}

	recvBuffer, err := getSockOpt(c.fd, unix.SOL_SOCKET, unix.SO_RCVBUF, "SO_RCVBUF")
	if err != nil {
		return SocketOptions{}, errors.NewTransportIOError("getsockopt", err)
	}

	readTimeout, err := getSockTimeout(c.fd, unix.SO_RCVTIMEO, "SO_RCVTIMEO")
	if err != nil {
		return SocketOptions{}, errors.NewTransportIOError("getsockopt", err)
	}

	return SocketOptions{
		KeepAlive:       keepAlive != 0,
		SendBufferBytes: sendBuffer,
		RecvBufferBytes: recvBuffer,
		ReadTimeout:     readTimeout,
	}, nil
}

// NetConn hands the connection over to Go's network stack. The returned
// net.Conn owns a duplicate of the socket; the original descriptor is closed
// and this AcceptedConnection must not be used afterwards. Socket options
// carry over. Go's poller ignores SO_RCVTIMEO, so callers should enforce
// ReadIdleTimeout with read deadlines.
func (c *AcceptedConnection) NetConn() (net.Conn, error) {
	if !c.closed.CompareAndSwap(false, true) {
		return nil, errors.ErrNotOpen
	}

	file := os.NewFile(uintptr(c.fd), fmt.Sprintf("tcp:%s->%s", c.localAddr, c.remoteAddr))
	conn, err := net.FileConn(file)
	if cerr := file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, errors.NewTransportIOError("fileconn", err)
	}
	return conn, nil
}

// Close closes the connection. It is idempotent.
func (c *AcceptedConnection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := unix.Close(c.fd); err != nil {
		return errors.NewTransportIOError("close", err)
	}
	return nil
}

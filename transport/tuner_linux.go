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
	"golang.org/x/sys/unix"

	"github.com/tochemey/suro/errors"
)

// Apply tunes the connected socket fd. Either every option is applied or a
// *errors.TransportIOError is returned; the caller owns fd and must discard
// it on error.
func (t *ConnectionTuner) Apply(fd int) error {
	if err := setSockOpt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1, "SO_KEEPALIVE"); err != nil {
		return errors.NewTransportIOError("setsockopt", err)
	}

	if err := setSockOpt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, t.sendBufferBytes, "SO_SNDBUF"); err != nil {
		return errors.NewTransportIOError("setsockopt", err)
	}

	if err := setSockOpt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, t.recvBufferBytes, "SO_RCVBUF"); err != nil {
		return errors.NewTransportIOError("setsockopt", err)
	}

	if err := setSockTimeout(fd, unix.SO_RCVTIMEO, t.readIdleTimeout, "SO_RCVTIMEO"); err != nil {
		return errors.NewTransportIOError("setsockopt", err)
	}
	return nil
}

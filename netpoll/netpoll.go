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

// Package netpoll defines the readiness multiplexer a listening socket
// registers with, and ships an epoll-backed implementation for Linux.
package netpoll

import (
	"errors"
	"strings"
)

// ErrClosed is returned when the poller is used after Close.
var ErrClosed = errors.New("netpoll: poller is closed")

// Interest is a set of readiness conditions a file descriptor is watched for.
type Interest uint32

const (
	// Acceptable reports a listening socket with at least one pending connection.
	Acceptable Interest = 1 << iota
	// Readable reports a connected socket with data (or EOF) to read.
	Readable
	// Writable reports a connected socket whose send buffer has room.
	Writable
)

// String returns the textual form of the interest set
func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	parts := make([]string, 0, 3)
	if i&Acceptable != 0 {
		parts = append(parts, "acceptable")
	}
	if i&Readable != 0 {
		parts = append(parts, "readable")
	}
	if i&Writable != 0 {
		parts = append(parts, "writable")
	}
	return strings.Join(parts, "|")
}

// Event is one readiness notification returned by Wait.
type Event struct {
	// Fd is the file descriptor that became ready.
	Fd int
	// Ready is the subset of the registered interest that is ready.
	Ready Interest
	// Hangup is set when the kernel reported an error or a hangup on Fd.
	Hangup bool
}

// Multiplexer is the registration side of a readiness poller.
// A listening socket registers its descriptor for Acceptable exactly once.
type Multiplexer interface {
	// Register starts watching fd for the given interest.
	Register(fd int, interest Interest) error
}

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

package netpoll

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("netpoll: this platform is not supported")

// Poller is not available on this platform.
type Poller struct{}

var _ Multiplexer = (*Poller)(nil)

// NewPoller returns an error for unsupported platforms.
func NewPoller() (*Poller, error) {
	return nil, errUnsupported
}

// Register always fails on unsupported platforms.
func (p *Poller) Register(int, Interest) error { return errUnsupported }

// Unregister always fails on unsupported platforms.
func (p *Poller) Unregister(int) error { return errUnsupported }

// Wait always fails on unsupported platforms.
func (p *Poller) Wait([]Event, time.Duration) (int, error) { return 0, errUnsupported }

// Wake always fails on unsupported platforms.
func (p *Poller) Wake() error { return errUnsupported }

// Close is a no-op on unsupported platforms.
func (p *Poller) Close() error { return nil }

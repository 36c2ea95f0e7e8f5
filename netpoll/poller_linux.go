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

package netpoll

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

const defaultEventCapacity = 128

// Poller is a level-triggered epoll multiplexer with an eventfd used to
// interrupt a blocked Wait from another goroutine.
//
// Register, Unregister and Wake may be called from any goroutine.
// Wait must only be called from a single goroutine, and Close from that
// same goroutine once Wait has returned.
type Poller struct {
	epfd      int
	wakefd    int
	mu        sync.RWMutex
	interests map[int]Interest
	raw       []unix.EpollEvent
	closed    *atomic.Bool
}

var _ Multiplexer = (*Poller)(nil)

// NewPoller creates an epoll instance and its wakeup eventfd
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd create: %w", err)
	}

	event := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, event); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add eventfd: %w", err)
	}

	return &Poller{
		epfd:      epfd,
		wakefd:    wakefd,
		interests: make(map[int]Interest),
		raw:       make([]unix.EpollEvent, defaultEventCapacity),
		closed:    atomic.NewBool(false),
	}, nil
}

// Register adds fd to the epoll watch list
func (p *Poller) Register(fd int, interest Interest) error {
	if p.closed.Load() {
		return ErrClosed
	}

	event := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, event); err != nil {
		return fmt.Errorf("epoll ctl add fd=%d: %w", fd, err)
	}

	p.mu.Lock()
	p.interests[fd] = interest
	p.mu.Unlock()
	return nil
}

// Unregister removes fd from the epoll watch list. Closing a descriptor
// removes it implicitly, in which case Unregister only forgets the interest.
func (p *Poller) Unregister(fd int) error {
	if p.closed.Load() {
		return ErrClosed
	}

	p.mu.Lock()
	delete(p.interests, fd)
	p.mu.Unlock()

	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil && err != unix.EBADF && err != unix.ENOENT {
		return fmt.Errorf("epoll ctl del fd=%d: %w", fd, err)
	}
	return nil
}

// Wait blocks until at least one registered descriptor is ready, the timeout
// elapses or Wake is called. A negative timeout waits forever.
// It fills events and returns how many were written.
func (p *Poller) Wait(events []Event, timeout time.Duration) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	if len(events) == 0 {
		return 0, nil
	}
	if len(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}

	n, err := unix.EpollWait(p.epfd, p.raw[:len(events)], toMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		if p.closed.Load() {
			return 0, ErrClosed
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for i := 0; i < n; i++ {
		raw := p.raw[i]
		fd := int(raw.Fd)
		if fd == p.wakefd {
			p.drainWake()
			continue
		}

		interest, ok := p.interests[fd]
		if !ok {
			continue
		}

		events[count] = Event{
			Fd:     fd,
			Ready:  fromEpollEvents(raw.Events, interest),
			Hangup: raw.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
		count++
	}
	return count, nil
}

// Wake interrupts a concurrent Wait
func (p *Poller) Wake() error {
	// Close takes the write side before releasing wakefd
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrClosed
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(p.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

// Close releases the epoll instance and the eventfd. It is idempotent.
func (p *Poller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	wakeErr := unix.Close(p.wakefd)
	epErr := unix.Close(p.epfd)
	if epErr != nil {
		return fmt.Errorf("epoll close: %w", epErr)
	}
	if wakeErr != nil {
		return fmt.Errorf("eventfd close: %w", wakeErr)
	}
	return nil
}

func (p *Poller) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(p.wakefd, buf[:]); err != nil {
			return
		}
	}
}

func toEpollEvents(interest Interest) uint32 {
	var events uint32
	if interest&(Acceptable|Readable) != 0 {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}
	return events
}

func fromEpollEvents(events uint32, interest Interest) Interest {
	var ready Interest
	if events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		ready |= interest & (Acceptable | Readable)
	}
	if events&unix.EPOLLOUT != 0 {
		ready |= interest & Writable
	}
	return ready
}

func toMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}

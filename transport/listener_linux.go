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

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/tochemey/suro/config"
	"github.com/tochemey/suro/errors"
	"github.com/tochemey/suro/netpoll"
)

const acceptFlags = unix.SOCK_NONBLOCK | unix.SOCK_CLOEXEC

// NewListenerSocket creates a non-blocking TCP socket, enables address reuse,
// binds it to 0.0.0.0:cfg.Port and starts the kernel accept queue.
// cfg is validated and copied first. Any failure is a
// *errors.TransportSetupError and is not retried.
func NewListenerSocket(cfg *config.Config, opts ...ListenerOption) (*ListenerSocket, error) {
	if cfg == nil {
		return nil, errors.NewTransportSetupError("", errors.ErrConfigRequired)
	}

	snapshot, err := config.Snapshot(cfg)
	if err != nil {
		return nil, errors.NewTransportSetupError(cfg.BindAddress(), err)
	}

	bindAddr := snapshot.BindAddress()

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|acceptFlags, unix.IPPROTO_TCP)
	if err != nil {
		return nil, errors.NewTransportSetupError(bindAddr, fmt.Errorf("socket: %w", err))
	}

	addr, err := bindAndListen(fd, snapshot)
	if err != nil {
		_ = unix.Close(fd)
		return nil, errors.NewTransportSetupError(bindAddr, err)
	}

	listener := &ListenerSocket{
		config: snapshot,
		tuner:  NewConnectionTuner(snapshot),
		logger: snapshot.Logger,
		fd:     fd,
		addr:   addr,
		state:  atomic.NewInt32(int32(StateBound)),
		closed: atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(listener)
	}

	listener.logger.Debugf("server socket bound on %s (fd=%d)", addr, fd)
	return listener, nil
}

func bindAndListen(fd int, cfg *config.Config) (*net.TCPAddr, error) {
	// rebinding right after a restart must not wait for TIME_WAIT sockets to drain
	if err := setSockOpt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1, "SO_REUSEADDR"); err != nil {
		return nil, err
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: cfg.Port}); err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	backlog := cfg.ListenBacklog
	if backlog == 0 {
		backlog = unix.SOMAXCONN
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	return toTCPAddr(sa), nil
}

// Listen makes sure accept never waits: the accept timeout of the socket is
// reset to zero. A failure is logged and ignored, the descriptor is already
// non-blocking.
func (l *ListenerSocket) Listen() {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.fd < 0 {
		return
	}

	if err := unix.SetsockoptTimeval(l.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &unix.Timeval{}); err != nil {
		l.logger.Warnf("could not reset accept timeout on %s: %v", l.addr, err)
	}
}

// RegisterWithMultiplexer declares interest in acceptable events. Call it
// exactly once per multiplexer.
//
// Registration is best effort: when the listener is already closed or the
// multiplexer refuses the descriptor (a shutdown race), nothing is installed
// and nothing is reported.
func (l *ListenerSocket) RegisterWithMultiplexer(mux netpoll.Multiplexer) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.fd < 0 {
		l.logger.Debugf("skipping registration of closed server socket %s", l.addr)
		return
	}

	if err := mux.Register(l.fd, netpoll.Acceptable); err != nil {
		l.logger.Debugf("could not register server socket %s: %v", l.addr, err)
		return
	}

	l.state.CompareAndSwap(int32(StateBound), int32(StateListening))
}

// AcceptNonBlocking accepts at most one pending connection and never blocks.
//
// It returns (nil, nil) when no connection is pending, which is expected
// after a stale or spurious notification. It returns errors.ErrNotOpen once
// the listener is closed. Any other OS failure is a *errors.TransportIOError
// and leaves the listener open. A connection whose tuning fails is closed
// and the tuning error is returned instead.
func (l *ListenerSocket) AcceptNonBlocking() (*AcceptedConnection, error) {
	if l.closed.Load() {
		return nil, errors.ErrNotOpen
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.fd < 0 {
		return nil, errors.ErrNotOpen
	}

	nfd, sa, err := unix.Accept4(l.fd, acceptFlags)
	if err != nil {
		switch err {
		case unix.EAGAIN, unix.EINTR, unix.ECONNABORTED:
			// EWOULDBLOCK is EAGAIN on linux
			return nil, nil
		default:
			return nil, errors.NewTransportIOError("accept", err)
		}
	}

	if err := l.tune(nfd); err != nil {
		if cerr := unix.Close(nfd); cerr != nil {
			l.logger.Warnf("could not close untuned connection fd=%d: %v", nfd, cerr)
		}
		return nil, err
	}

	return newAcceptedConnection(nfd, toTCPAddr(sa), l.Addr(), l.tuner), nil
}

// tune applies the mandatory policy then the extra steps, all or nothing
func (l *ListenerSocket) tune(fd int) error {
	if err := l.tuner.Apply(fd); err != nil {
		return err
	}

	for _, step := range l.extraTuning {
		if err := step(fd); err != nil {
			return errors.NewTransportIOError("setsockopt", err)
		}
	}
	return nil
}

// Close releases the listening descriptor. It is idempotent and safe to call
// concurrently with AcceptNonBlocking from another goroutine. A failure
// reported by the OS is logged as a warning.
func (l *ListenerSocket) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fd := l.fd
	l.fd = -1
	l.state.Store(int32(StateClosed))

	if err := unix.Close(fd); err != nil {
		l.logger.Warnf("could not close server socket %s: %v", l.addr, err)
		return
	}
	l.logger.Debugf("server socket %s closed", l.addr)
}

func toTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch addr := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(addr.Addr[:]).To16(), Port: addr.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, addr.Addr[:])
		return &net.TCPAddr{IP: ip, Port: addr.Port}
	default:
		return &net.TCPAddr{}
	}
}

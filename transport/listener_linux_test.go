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
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"

	"github.com/tochemey/suro/config"
	gerrors "github.com/tochemey/suro/errors"
	"github.com/tochemey/suro/log"
	"github.com/tochemey/suro/netpoll"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewListenerSocket(t *testing.T) {
	t.Run("With ephemeral port", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		require.NotNil(t, listener)
		t.Cleanup(listener.Close)

		assert.Equal(t, StateBound, listener.State())
		assert.Greater(t, listener.Addr().Port, 0)
		assert.True(t, listener.Addr().IP.Equal(net.IPv4zero))
		assert.GreaterOrEqual(t, listener.Fd(), 0)
		assert.NotNil(t, listener.Tuner())
	})
	t.Run("With SO_REUSEADDR enabled", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		reuse, err := unix.GetsockoptInt(listener.Fd(), unix.SOL_SOCKET, unix.SO_REUSEADDR)
		require.NoError(t, err)
		assert.Equal(t, 1, reuse)
	})
	t.Run("With port already in use", func(t *testing.T) {
		occupied, err := net.Listen("tcp4", "0.0.0.0:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = occupied.Close() })
		port := occupied.Addr().(*net.TCPAddr).Port

		listener, err := NewListenerSocket(newTestConfig(t, port))
		require.Error(t, err)
		assert.Nil(t, listener)

		var setupErr *gerrors.TransportSetupError
		require.True(t, errors.As(err, &setupErr))
		assert.Equal(t, fmt.Sprintf("0.0.0.0:%d", port), setupErr.Addr())
		assert.ErrorIs(t, err, unix.EADDRINUSE)
	})
	t.Run("With a nil config", func(t *testing.T) {
		listener, err := NewListenerSocket(nil)
		require.Error(t, err)
		assert.Nil(t, listener)
		assert.ErrorIs(t, err, gerrors.ErrConfigRequired)
	})
	t.Run("With a config literal", func(t *testing.T) {
		literal := &config.Config{SocketSendBufferBytes: 65536, SocketRecvBufferBytes: 65536}
		listener, err := NewListenerSocket(literal)
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		assert.Equal(t, StateBound, listener.State())
		assert.Equal(t, 65536, listener.Tuner().SendBufferBytes())
		assert.Nil(t, literal.Logger)
	})
	t.Run("With an invalid config literal", func(t *testing.T) {
		listener, err := NewListenerSocket(&config.Config{
			SocketSendBufferBytes: -1,
			SocketRecvBufferBytes: 65536,
			ClientIdleTimeout:     -time.Second,
			Logger:                log.DiscardLogger,
		})
		require.Error(t, err)
		assert.Nil(t, listener)

		var setupErr *gerrors.TransportSetupError
		require.True(t, errors.As(err, &setupErr))
		assert.ErrorIs(t, err, gerrors.ErrInvalidBufferSize)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
	})
	t.Run("With custom backlog", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0, config.WithListenBacklog(16)))
		require.NoError(t, err)
		t.Cleanup(listener.Close)
		assert.Equal(t, StateBound, listener.State())
	})
}

func TestListenerSocketRebind(t *testing.T) {
	port := dynaport.Get(1)[0]
	cfg := newTestConfig(t, port)

	listener, err := NewListenerSocket(cfg)
	require.NoError(t, err)

	client := dial(t, listener)
	conn := acceptOne(t, listener)
	// closing the server side first leaves it in TIME_WAIT
	require.NoError(t, conn.Close())
	_ = client.Close()
	listener.Close()

	rebound, err := NewListenerSocket(cfg)
	require.NoError(t, err)
	t.Cleanup(rebound.Close)
	assert.Equal(t, port, rebound.Addr().Port)
}

func TestListenerSocketListen(t *testing.T) {
	listener, err := NewListenerSocket(newTestConfig(t, 0))
	require.NoError(t, err)

	listener.Listen()
	timeout, err := unix.GetsockoptTimeval(listener.Fd(), unix.SOL_SOCKET, unix.SO_RCVTIMEO)
	require.NoError(t, err)
	assert.Zero(t, timeout.Nano())

	listener.Close()
	assert.NotPanics(t, listener.Listen)
}

func TestListenerSocketRegisterWithMultiplexer(t *testing.T) {
	t.Run("With a multiplexer", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		mux := &recordingMultiplexer{}
		listener.RegisterWithMultiplexer(mux)

		require.Len(t, mux.registrations, 1)
		assert.Equal(t, listener.Fd(), mux.registrations[0].fd)
		assert.Equal(t, netpoll.Acceptable, mux.registrations[0].interest)
		assert.Equal(t, StateListening, listener.State())
	})
	t.Run("With a refusing multiplexer", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		mux := &recordingMultiplexer{err: unix.EBADF}
		assert.NotPanics(t, func() { listener.RegisterWithMultiplexer(mux) })
		assert.Equal(t, StateBound, listener.State())
	})
	t.Run("With a closed listener", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		listener.Close()

		mux := &recordingMultiplexer{}
		listener.RegisterWithMultiplexer(mux)
		assert.Empty(t, mux.registrations)
		assert.Equal(t, StateClosed, listener.State())
	})
}

func TestListenerSocketAcceptNonBlocking(t *testing.T) {
	t.Run("With nothing pending", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)
		listener.Listen()

		start := time.Now()
		conn, err := listener.AcceptNonBlocking()
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Nil(t, conn)
		assert.Less(t, elapsed, 50*time.Millisecond)
	})
	t.Run("With one pending connection", func(t *testing.T) {
		cfg := newTestConfig(t, 0,
			config.WithSendBufferBytes(65536),
			config.WithRecvBufferBytes(65536),
			config.WithClientIdleTimeout(0))

		listener, err := NewListenerSocket(cfg)
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		poller, err := netpoll.NewPoller()
		require.NoError(t, err)
		t.Cleanup(func() { _ = poller.Close() })

		listener.Listen()
		listener.RegisterWithMultiplexer(poller)
		require.Equal(t, StateListening, listener.State())

		client := dial(t, listener)

		events := make([]netpoll.Event, 4)
		n, err := poller.Wait(events, time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, listener.Fd(), events[0].Fd)
		require.Equal(t, netpoll.Acceptable, events[0].Ready)

		conn, err := listener.AcceptNonBlocking()
		require.NoError(t, err)
		require.NotNil(t, conn)
		t.Cleanup(func() { _ = conn.Close() })

		assert.Equal(t, client.LocalAddr().String(), conn.RemoteAddr().String())
		assert.Equal(t, listener.Addr().Port, conn.LocalAddr().(*net.TCPAddr).Port)
		assert.Equal(t, 65536, conn.SendBufferBytes())
		assert.Equal(t, 65536, conn.RecvBufferBytes())
		assert.Zero(t, conn.ReadIdleTimeout())

		opts, err := conn.SocketOptions()
		require.NoError(t, err)
		assert.True(t, opts.KeepAlive)
		assert.Equal(t, kernelBufferSize(65536), opts.SendBufferBytes)
		assert.Equal(t, kernelBufferSize(65536), opts.RecvBufferBytes)
		assert.Zero(t, opts.ReadTimeout)

		flags, err := unix.FcntlInt(uintptr(conn.Fd()), unix.F_GETFL, 0)
		require.NoError(t, err)
		assert.NotZero(t, flags&unix.O_NONBLOCK)

		// the queue is drained
		next, err := listener.AcceptNonBlocking()
		require.NoError(t, err)
		assert.Nil(t, next)
	})
	t.Run("With an idle timeout", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0, config.WithClientIdleTimeout(1500*time.Millisecond)))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		dial(t, listener)
		conn := acceptOne(t, listener)
		t.Cleanup(func() { _ = conn.Close() })

		assert.Equal(t, 1500*time.Millisecond, conn.ReadIdleTimeout())
		opts, err := conn.SocketOptions()
		require.NoError(t, err)
		assert.InDelta(t, float64(1500*time.Millisecond), float64(opts.ReadTimeout), float64(10*time.Millisecond))
	})
	t.Run("With a failing tuning step", func(t *testing.T) {
		failures := atomic.NewInt32(1)
		step := func(fd int) error {
			if failures.Dec() >= 0 {
				return unix.EINVAL
			}
			return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		}

		listener, err := NewListenerSocket(newTestConfig(t, 0), WithTuning(step))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		discarded := dial(t, listener)

		var (
			conn      *AcceptedConnection
			acceptErr error
		)
		require.Eventually(t, func() bool {
			conn, acceptErr = listener.AcceptNonBlocking()
			return conn != nil || acceptErr != nil
		}, time.Second, 5*time.Millisecond)

		require.Error(t, acceptErr)
		assert.Nil(t, conn)
		var ioErr *gerrors.TransportIOError
		require.True(t, errors.As(acceptErr, &ioErr))
		assert.Equal(t, "setsockopt", ioErr.Op())
		assert.ErrorIs(t, acceptErr, unix.EINVAL)

		// the discarded connection is closed by the listener
		require.NoError(t, discarded.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err = discarded.Read(make([]byte, 1))
		require.Error(t, err)
		var netErr net.Error
		assert.False(t, errors.As(err, &netErr) && netErr.Timeout(), "discarded connection was left open")

		// the listener stays open and tunes the next connection fully
		assert.NotEqual(t, StateClosed, listener.State())
		dial(t, listener)
		accepted := acceptOne(t, listener)
		t.Cleanup(func() { _ = accepted.Close() })

		noDelay, err := unix.GetsockoptInt(accepted.Fd(), unix.IPPROTO_TCP, unix.TCP_NODELAY)
		require.NoError(t, err)
		assert.Equal(t, 1, noDelay)
		opts, err := accepted.SocketOptions()
		require.NoError(t, err)
		assert.True(t, opts.KeepAlive)
	})
	t.Run("With a closed listener", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		listener.Close()

		conn, err := listener.AcceptNonBlocking()
		require.Error(t, err)
		assert.Nil(t, conn)
		assert.ErrorIs(t, err, gerrors.ErrNotOpen)
	})
}

func TestListenerSocketClose(t *testing.T) {
	t.Run("Close is idempotent", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)

		assert.NotPanics(t, listener.Close)
		assert.NotPanics(t, listener.Close)
		assert.Equal(t, StateClosed, listener.State())
		assert.Equal(t, -1, listener.Fd())
	})
	t.Run("Interrupt closes the listener", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)

		listener.Interrupt()
		assert.Equal(t, StateClosed, listener.State())
		_, err = listener.AcceptNonBlocking()
		assert.ErrorIs(t, err, gerrors.ErrNotOpen)
	})
	t.Run("Concurrent Close collapses into one", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				listener.Close()
			}()
		}
		wg.Wait()
		assert.Equal(t, StateClosed, listener.State())
	})
	t.Run("Close races an accept loop", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		listener.Listen()
		addr := fmt.Sprintf("127.0.0.1:%d", listener.Addr().Port)

		loopErr := make(chan error, 1)
		go func() {
			for {
				conn, err := listener.AcceptNonBlocking()
				if err != nil {
					loopErr <- err
					return
				}
				if conn != nil {
					_ = conn.Close()
				}
			}
		}()

		for range 5 {
			if client, err := net.DialTimeout("tcp4", addr, time.Second); err == nil {
				_ = client.Close()
			}
		}

		time.Sleep(10 * time.Millisecond)
		listener.Interrupt()

		select {
		case err := <-loopErr:
			assert.ErrorIs(t, err, gerrors.ErrNotOpen)
		case <-time.After(2 * time.Second):
			t.Fatal("accept loop did not observe the close")
		}
	})
}

func TestConnectionTuner(t *testing.T) {
	t.Run("TuneConn on a standard library connection", func(t *testing.T) {
		cfg := newTestConfig(t, 0,
			config.WithSendBufferBytes(32768),
			config.WithRecvBufferBytes(49152))
		tuner := NewConnectionTuner(cfg)
		assert.Equal(t, 32768, tuner.SendBufferBytes())
		assert.Equal(t, 49152, tuner.RecvBufferBytes())
		assert.Zero(t, tuner.ReadIdleTimeout())

		ln, err := net.Listen("tcp4", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = ln.Close() })

		client, err := net.Dial("tcp4", ln.Addr().String())
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		server, err := ln.Accept()
		require.NoError(t, err)
		t.Cleanup(func() { _ = server.Close() })

		tcpConn := server.(*net.TCPConn)
		require.NoError(t, tuner.TuneConn(tcpConn))

		rawConn, err := tcpConn.SyscallConn()
		require.NoError(t, err)
		var keepAlive, sendBuffer, recvBuffer int
		require.NoError(t, rawConn.Control(func(fd uintptr) {
			keepAlive, _ = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE)
			sendBuffer, _ = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF)
			recvBuffer, _ = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
		}))
		assert.Equal(t, 1, keepAlive)
		assert.Equal(t, kernelBufferSize(32768), sendBuffer)
		assert.Equal(t, kernelBufferSize(49152), recvBuffer)
	})
	t.Run("Apply fails as a whole on a bad descriptor", func(t *testing.T) {
		tuner := NewConnectionTuner(newTestConfig(t, 0))
		err := tuner.Apply(-1)
		require.Error(t, err)

		var ioErr *gerrors.TransportIOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "setsockopt", ioErr.Op())
		assert.ErrorIs(t, err, unix.EBADF)
	})
}

func TestAcceptedConnection(t *testing.T) {
	t.Run("NetConn hands the socket to the net package", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		client := dial(t, listener)
		accepted := acceptOne(t, listener)

		conn, err := accepted.NetConn()
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })

		_, err = client.Write([]byte("ping"))
		require.NoError(t, err)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		buf := make([]byte, 4)
		_, err = io.ReadFull(conn, buf)
		require.NoError(t, err)
		assert.Equal(t, "ping", string(buf))

		_, err = accepted.NetConn()
		assert.ErrorIs(t, err, gerrors.ErrNotOpen)
		_, err = accepted.SocketOptions()
		assert.ErrorIs(t, err, gerrors.ErrNotOpen)
		assert.NoError(t, accepted.Close())
	})
	t.Run("Close is idempotent", func(t *testing.T) {
		listener, err := NewListenerSocket(newTestConfig(t, 0))
		require.NoError(t, err)
		t.Cleanup(listener.Close)

		dial(t, listener)
		accepted := acceptOne(t, listener)
		require.NoError(t, accepted.Close())
		require.NoError(t, accepted.Close())
	})
}

func TestState(t *testing.T) {
	assert.Equal(t, "unbound", StateUnbound.String())
	assert.Equal(t, "bound", StateBound.String())
	assert.Equal(t, "listening", StateListening.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", State(42).String())
}

type registration struct {
	fd       int
	interest netpoll.Interest
}

type recordingMultiplexer struct {
	err           error
	registrations []registration
}

func (m *recordingMultiplexer) Register(fd int, interest netpoll.Interest) error {
	if m.err != nil {
		return m.err
	}
	m.registrations = append(m.registrations, registration{fd: fd, interest: interest})
	return nil
}

func newTestConfig(t *testing.T, port int, opts ...config.Option) *config.Config {
	t.Helper()
	opts = append([]config.Option{config.WithLogger(log.DiscardLogger)}, opts...)
	cfg, err := config.New(port, opts...)
	require.NoError(t, err)
	return cfg
}

func dial(t *testing.T, listener *ListenerSocket) net.Conn {
	t.Helper()
	client, err := net.DialTimeout("tcp4", fmt.Sprintf("127.0.0.1:%d", listener.Addr().Port), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func acceptOne(t *testing.T, listener *ListenerSocket) *AcceptedConnection {
	t.Helper()
	var (
		conn *AcceptedConnection
		err  error
	)
	require.Eventually(t, func() bool {
		conn, err = listener.AcceptNonBlocking()
		return conn != nil || err != nil
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, err)
	return conn
}

// kernelBufferSize is what linux reports for a SO_SNDBUF/SO_RCVBUF value
// below net.core.wmem_max/rmem_max.
func kernelBufferSize(configured int) int {
	return 2 * configured
}

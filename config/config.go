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

// Package config holds the read-only configuration snapshot consumed by the
// listening socket, the connection tuner and the reactor.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tochemey/suro/errors"
	"github.com/tochemey/suro/internal/validation"
	"github.com/tochemey/suro/log"
)

const (
	// DefaultPort is the port the collector listens on when none is configured.
	DefaultPort = 7101
	// DefaultStatusServerPort is the port of the administrative status server.
	DefaultStatusServerPort = 7103
	// DefaultSocketBufferBytes is the default per-connection send and receive buffer size.
	DefaultSocketBufferBytes = 64 * 1024
	// DefaultStartupTimeout bounds how long the reactor may take to start.
	DefaultStartupTimeout = 5 * time.Second
	// DefaultPollTimeout is how long a single multiplexer wait may block.
	DefaultPollTimeout = 100 * time.Millisecond

	bindHost = "0.0.0.0"
)

// Config is the configuration snapshot. It is read-only once built.
type Config struct {
	// Port is the TCP port to bind on 0.0.0.0. Zero picks an ephemeral port.
	Port int
	// SocketSendBufferBytes is applied as SO_SNDBUF on every accepted connection.
	SocketSendBufferBytes int
	// SocketRecvBufferBytes is applied as SO_RCVBUF on every accepted connection.
	SocketRecvBufferBytes int
	// ClientIdleTimeout is the read-idle timeout of accepted connections.
	// Zero means no timeout: the transport detects dead peers on its own.
	ClientIdleTimeout time.Duration
	// StatusServerPort is the administrative port. The listener ignores it.
	StatusServerPort int
	// ListenBacklog is the accept queue length. Zero uses the OS default.
	ListenBacklog int
	// StartupTimeout bounds the reactor start sequence.
	StartupTimeout time.Duration
	// PollTimeout bounds a single multiplexer wait of the reactor loop.
	PollTimeout time.Duration
	// MaxInFlightHandlers caps concurrently running connection handlers.
	// Zero means unlimited.
	MaxInFlightHandlers int
	// Logger is the logger used by every component built from this config.
	Logger log.Logger
}

// New creates a validated Config listening on the given port
func New(port int, options ...Option) (*Config, error) {
	config := &Config{
		Port:                  port,
		SocketSendBufferBytes: DefaultSocketBufferBytes,
		SocketRecvBufferBytes: DefaultSocketBufferBytes,
		StatusServerPort:      DefaultStatusServerPort,
		StartupTimeout:        DefaultStartupTimeout,
		PollTimeout:           DefaultPollTimeout,
		Logger:                log.DefaultLogger,
	}

	for _, opt := range options {
		opt.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Snapshot returns a validated copy of cfg that later changes to cfg do not
// affect. A nil Logger falls back to log.DefaultLogger so that struct literals
// are usable.
func Snapshot(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, errors.ErrConfigRequired
	}

	snapshot := *cfg
	if snapshot.Logger == nil {
		snapshot.Logger = log.DefaultLogger
	}

	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Validate checks every field and reports all violations at once
func (c *Config) Validate() error {
	return validation.New(validation.AllErrors()).
		AddValidator(validation.NewPortValidator("port", c.Port)).
		AddValidator(validation.NewPortValidator("statusServerPort", c.StatusServerPort)).
		AddValidator(validation.NewBufferSizeValidator("socketSendBufferBytes", c.SocketSendBufferBytes)).
		AddValidator(validation.NewBufferSizeValidator("socketRecvBufferBytes", c.SocketRecvBufferBytes)).
		AddValidator(validation.NewDurationValidator("clientIdleTimeout", c.ClientIdleTimeout)).
		AddValidator(validation.NewDurationValidator("startupTimeout", c.StartupTimeout)).
		AddValidator(validation.NewDurationValidator("pollTimeout", c.PollTimeout)).
		AddValidator(newBacklogValidator(c.ListenBacklog)).
		AddAssertion(c.MaxInFlightHandlers >= 0, "maxInFlightHandlers must not be negative").
		AddAssertion(c.Logger != nil, "logger is required").
		Validate()
}

// BindAddress returns the host:port the listening socket binds to
func (c *Config) BindAddress() string {
	return net.JoinHostPort(bindHost, strconv.Itoa(c.Port))
}

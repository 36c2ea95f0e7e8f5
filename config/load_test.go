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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/suro/log"
)

func TestLoad(t *testing.T) {
	t.Run("With YAML file", func(t *testing.T) {
		path := writeConfigFile(t, "suro.yaml", `
port: 7201
socketSendBufferBytes: 131072
socketRecvBufferBytes: 262144
clientIdleTimeoutMillis: 1500
statusServerPort: 7203
listenBacklog: 256
startupTimeoutMillis: 2000
pollTimeoutMillis: 50
maxInFlightHandlers: 32
logLevel: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 7201, cfg.Port)
		assert.Equal(t, 131072, cfg.SocketSendBufferBytes)
		assert.Equal(t, 262144, cfg.SocketRecvBufferBytes)
		assert.Equal(t, 1500*time.Millisecond, cfg.ClientIdleTimeout)
		assert.Equal(t, 7203, cfg.StatusServerPort)
		assert.Equal(t, 256, cfg.ListenBacklog)
		assert.Equal(t, 2*time.Second, cfg.StartupTimeout)
		assert.Equal(t, 50*time.Millisecond, cfg.PollTimeout)
		assert.Equal(t, 32, cfg.MaxInFlightHandlers)
		assert.Equal(t, log.DebugLevel, cfg.Logger.LogLevel())
	})
	t.Run("With defaults only", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, DefaultSocketBufferBytes, cfg.SocketSendBufferBytes)
		assert.Equal(t, DefaultStartupTimeout, cfg.StartupTimeout)
		assert.Equal(t, log.InfoLevel, cfg.Logger.LogLevel())
	})
	t.Run("With environment override", func(t *testing.T) {
		t.Setenv("SURO_PORT", "7301")
		path := writeConfigFile(t, "suro.yaml", "port: 7201\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7301, cfg.Port)
	})
	t.Run("With missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
	t.Run("With invalid log level", func(t *testing.T) {
		path := writeConfigFile(t, "suro.yaml", "logLevel: verbose\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid log level")
	})
	t.Run("With invalid buffer size", func(t *testing.T) {
		path := writeConfigFile(t, "suro.yaml", "socketSendBufferBytes: 0\n")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tochemey/suro/log"
)

// EnvPrefix is the prefix of environment variables overriding file settings,
// e.g. SURO_PORT or SURO_SOCKETSENDBUFFERBYTES.
const EnvPrefix = "SURO"

const (
	keyPort                    = "port"
	keySocketSendBufferBytes   = "socketSendBufferBytes"
	keySocketRecvBufferBytes   = "socketRecvBufferBytes"
	keyClientIdleTimeoutMillis = "clientIdleTimeoutMillis"
	keyStatusServerPort        = "statusServerPort"
	keyListenBacklog           = "listenBacklog"
	keyStartupTimeoutMillis    = "startupTimeoutMillis"
	keyPollTimeoutMillis       = "pollTimeoutMillis"
	keyMaxInFlightHandlers     = "maxInFlightHandlers"
	keyLogLevel                = "logLevel"
)

// Load reads the configuration from the given YAML/JSON/TOML file, applies
// SURO_* environment overrides and validates the result. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyPort, DefaultPort)
	v.SetDefault(keySocketSendBufferBytes, DefaultSocketBufferBytes)
	v.SetDefault(keySocketRecvBufferBytes, DefaultSocketBufferBytes)
	v.SetDefault(keyClientIdleTimeoutMillis, 0)
	v.SetDefault(keyStatusServerPort, DefaultStatusServerPort)
	v.SetDefault(keyListenBacklog, 0)
	v.SetDefault(keyStartupTimeoutMillis, DefaultStartupTimeout.Milliseconds())
	v.SetDefault(keyPollTimeoutMillis, DefaultPollTimeout.Milliseconds())
	v.SetDefault(keyMaxInFlightHandlers, 0)
	v.SetDefault(keyLogLevel, log.InfoLevel.String())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	level := log.ParseLevel(v.GetString(keyLogLevel))
	if level == log.InvalidLevel {
		return nil, fmt.Errorf("invalid log level %q", v.GetString(keyLogLevel))
	}

	return New(v.GetInt(keyPort),
		WithSendBufferBytes(v.GetInt(keySocketSendBufferBytes)),
		WithRecvBufferBytes(v.GetInt(keySocketRecvBufferBytes)),
		WithClientIdleTimeout(millis(v.GetInt64(keyClientIdleTimeoutMillis))),
		WithStatusServerPort(v.GetInt(keyStatusServerPort)),
		WithListenBacklog(v.GetInt(keyListenBacklog)),
		WithStartupTimeout(millis(v.GetInt64(keyStartupTimeoutMillis))),
		WithPollTimeout(millis(v.GetInt64(keyPollTimeoutMillis))),
		WithMaxInFlightHandlers(v.GetInt(keyMaxInFlightHandlers)),
		WithLogger(log.NewZap(level, os.Stdout)),
	)
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

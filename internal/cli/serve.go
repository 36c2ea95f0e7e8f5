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

package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tochemey/suro/config"
	"github.com/tochemey/suro/reactor"
	"github.com/tochemey/suro/transport"
)

const (
	portFlag        = "port"
	shutdownTimeout = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the listener and serve until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int(portFlag, config.DefaultPort, "TCP port to listen on, overrides the configuration")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed(portFlag) {
		cfg.Port, _ = cmd.Flags().GetInt(portFlag)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}

	logger := cfg.Logger
	defer func() {
		_ = logger.Flush()
	}()

	handler := reactor.HandlerFunc(func(_ context.Context, conn *transport.AcceptedConnection) {
		logger.Debugf("accepted connection from %s", conn.RemoteAddr())
		if err := conn.Close(); err != nil {
			logger.Warnf("could not close connection from %s: %v", conn.RemoteAddr(), err)
		}
	})

	r, err := reactor.New(cfg, handler)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := r.Start(ctx); err != nil {
		return err
	}

	if addr, err := r.AdvertiseAddr(); err == nil {
		logger.Infof("advertising %s", addr)
	}
	cmd.Printf("listening on %s\n", r.Addr())

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return r.Stop(stopCtx)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(configFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, nil
}

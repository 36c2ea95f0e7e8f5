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

// Package cli holds the commands of the surod daemon.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrConfig is returned when the configuration cannot be loaded or is invalid
var ErrConfig = errors.New("configuration error")

const configFlag = "config"

// NewRootCommand builds the surod command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "surod",
		Short: "Non-blocking TCP listener daemon",
		Long: `surod binds a non-blocking TCP listener, tunes every accepted connection
(keepalive, socket buffers, read-idle timeout) and drives it from an epoll reactor.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String(configFlag, "", "path to the YAML configuration file (SURO_* environment variables override it)")
	root.AddCommand(newServeCommand(), newValidateCommand())
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

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

package validation

import (
	"fmt"
	"time"

	"github.com/tochemey/suro/errors"
)

const maxPort = 65535

// PortValidator checks that a port number fits in [0, 65535].
// Zero is accepted and means an ephemeral port.
type PortValidator struct {
	name string
	port int
}

var _ Validator = (*PortValidator)(nil)

// NewPortValidator creates an instance of PortValidator
func NewPortValidator(name string, port int) *PortValidator {
	return &PortValidator{name: name, port: port}
}

// Validate implements validation.Validator.
func (v *PortValidator) Validate() error {
	if v.port < 0 || v.port > maxPort {
		return fmt.Errorf("%s=(%d): %w", v.name, v.port, errors.ErrInvalidPort)
	}
	return nil
}

// BufferSizeValidator checks that a socket buffer size is strictly positive.
type BufferSizeValidator struct {
	name string
	size int
}

var _ Validator = (*BufferSizeValidator)(nil)

// NewBufferSizeValidator creates an instance of BufferSizeValidator
func NewBufferSizeValidator(name string, size int) *BufferSizeValidator {
	return &BufferSizeValidator{name: name, size: size}
}

// Validate implements validation.Validator.
func (v *BufferSizeValidator) Validate() error {
	if v.size <= 0 {
		return fmt.Errorf("%s=(%d): %w", v.name, v.size, errors.ErrInvalidBufferSize)
	}
	return nil
}

// DurationValidator checks that a duration is not negative.
// Zero is accepted and means "no timeout".
type DurationValidator struct {
	name  string
	value time.Duration
}

var _ Validator = (*DurationValidator)(nil)

// NewDurationValidator creates an instance of DurationValidator
func NewDurationValidator(name string, value time.Duration) *DurationValidator {
	return &DurationValidator{name: name, value: value}
}

// Validate implements validation.Validator.
func (v *DurationValidator) Validate() error {
	if v.value < 0 {
		return fmt.Errorf("%s=(%s): %w", v.name, v.value, errors.ErrInvalidTimeout)
	}
	return nil
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tochemey/suro/errors"
)

type validationTestSuite struct {
	suite.Suite
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestNewChain() {
	s.Run("new chain without option", func() {
		chain := New()
		s.Assert().NotNil(chain)
		s.Assert().False(chain.failFast)
	})
	s.Run("new chain with options", func() {
		chain := New(FailFast())
		s.Assert().True(chain.failFast)
		chain2 := New(AllErrors())
		s.Assert().False(chain2.failFast)
	})
}

func (s *validationTestSuite) TestAddAssertion() {
	chain := New()
	s.Assert().Empty(chain.validators)
	chain.AddAssertion(true, "")
	s.Assert().Equal(1, len(chain.validators))
	s.Assert().NoError(chain.Validate())
}

func (s *validationTestSuite) TestValidate() {
	s.Run("with single validator", func() {
		chain := New().AddValidator(NewPortValidator("port", -1))
		err := chain.Validate()
		s.Assert().Error(err)
		s.Assert().ErrorIs(err, errors.ErrInvalidPort)
		s.Assert().EqualError(err, "port=(-1): invalid port")
	})
	s.Run("with multiple validators and FailFast option", func() {
		chain := New(FailFast()).
			AddValidator(NewBufferSizeValidator("sendBufferBytes", 0)).
			AddAssertion(false, "this is false")
		err := chain.Validate()
		s.Assert().Nil(chain.violations)
		s.Assert().EqualError(err, "sendBufferBytes=(0): invalid socket buffer size")
	})
	s.Run("with multiple validators and AllErrors option", func() {
		chain := New(AllErrors()).
			AddValidator(NewBufferSizeValidator("sendBufferBytes", 0)).
			AddAssertion(false, "this is false")
		err := chain.Validate()
		s.Assert().NotNil(chain.violations)
		s.Assert().EqualError(err, "sendBufferBytes=(0): invalid socket buffer size; this is false")
	})
}

func (s *validationTestSuite) TestSocketValidators() {
	s.Assert().NoError(NewPortValidator("port", 0).Validate())
	s.Assert().NoError(NewPortValidator("port", 65535).Validate())
	s.Assert().ErrorIs(NewPortValidator("port", 65536).Validate(), errors.ErrInvalidPort)

	s.Assert().NoError(NewBufferSizeValidator("recv", 65536).Validate())
	s.Assert().ErrorIs(NewBufferSizeValidator("recv", -4).Validate(), errors.ErrInvalidBufferSize)

	s.Assert().NoError(NewDurationValidator("idle", 0).Validate())
	s.Assert().NoError(NewDurationValidator("idle", time.Second).Validate())
	s.Assert().ErrorIs(NewDurationValidator("idle", -time.Millisecond).Validate(), errors.ErrInvalidTimeout)
}

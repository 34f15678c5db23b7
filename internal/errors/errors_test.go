package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhollow/sheet-api/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "character not found",
			expected: "NOT_FOUND: character not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "invalid hit die",
			expected: "INVALID_ARGUMENT: invalid hit die",
		},
		{
			name:     "failed precondition error",
			code:     errors.CodeFailedPrecondition,
			message:  "too many choices",
			expected: "FAILED_PRECONDITION: too many choices",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := errors.NotFound("reference does not resolve")
	wrapped := errors.Wrap(base, "failed to grant item")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().True(errors.IsNotFound(wrapped))
	s.Assert().ErrorIs(wrapped, base)
}

func (s *ErrorsTestSuite) TestWrapPlainError() {
	base := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(base, "failed to load character")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Contains(wrapped.Error(), "connection refused")
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "nothing"))
}

func (s *ErrorsTestSuite) TestWithMeta() {
	err := errors.InvalidArgument("bad advancement type").
		WithMeta("advancement_id", "adv_1").
		WithMeta("item_id", "item_2")

	s.Assert().Equal("adv_1", err.Meta["advancement_id"])
	s.Assert().Equal("item_2", err.Meta["item_id"])
}

func (s *ErrorsTestSuite) TestGetCode() {
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(errors.NotFound("x")))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
}

func (s *ErrorsTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	s.Assert().NoError(vb.Build())

	vb.RequiredField("CharacterRepo")
	vb.InvalidField("Level", "must be positive")
	err := vb.Build()

	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Contains(err.Error(), "CharacterRepo")
	s.Assert().Contains(err.Error(), "Level")
}

func (s *ErrorsTestSuite) TestValidateHelpers() {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", "  ", vb)
	errors.ValidateRange("level", 25, 0, 20, vb)
	errors.ValidateEnum("mode", "median", []string{"max", "avg"}, vb)

	err := vb.Build()
	s.Require().Error(err)
	s.Assert().Contains(err.Error(), "name")
	s.Assert().Contains(err.Error(), "between 0 and 20")
	s.Assert().Contains(err.Error(), "must be one of")
}

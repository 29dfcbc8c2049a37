package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	plain := LoginRejected("invalid email or password")
	assert.Equal(t, "invalid email or password", plain.Error())

	cause := errors.New("connection refused")
	wrapped := Wrap(cause, ErrCodeInternal, "credential backend unreachable")
	assert.Equal(t, "credential backend unreachable: connection refused", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestCodePredicates(t *testing.T) {
	cases := []struct {
		err   error
		check func(error) bool
		want  bool
	}{
		{NotFound("missing"), IsNotFound, true},
		{Conflict("duplicate"), IsConflict, true},
		{Validation("bad input"), IsValidation, true},
		{Internal("boom"), IsInternal, true},
		{LoginRejected("nope"), IsLoginRejected, true},
		{IncompleteResponse("no token"), IsIncompleteResponse, true},
		{MalformedState("bad slot"), IsMalformedState, true},
		{LoginRejected("nope"), IsIncompleteResponse, false},
		{errors.New("plain"), IsLoginRejected, false},
		{nil, IsNotFound, false},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, tc.check(tc.err), "case %d", i)
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := IncompleteResponse("login response missing token")
	outer := fmt.Errorf("admin login: %w", inner)

	assert.True(t, IsIncompleteResponse(outer))
	assert.Equal(t, ErrCodeIncompleteResponse, GetCode(outer))
}

func TestWrapNilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	require.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestGetField(t *testing.T) {
	assert.Equal(t, "email", GetField(ValidationField("email", "This field is required.")))
	assert.Equal(t, "", GetField(Validation("no field")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}

package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "list products", cause)

	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list products")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeNotFound, "product not found")
	outer := Wrap(CodeInternal, "handling request", inner)

	// the outermost code wins
	assert.True(t, HasCode(outer, CodeInternal))

	var de *Error
	require.True(t, errors.As(outer, &de))
	assert.Equal(t, CodeInternal, de.Code)
}

func TestHasCodeOnPlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeInvalidInput: http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
		Code("mystery"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}

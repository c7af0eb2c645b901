package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewAuthorizationError("nope"), http.StatusUnauthorized},
		{NewAuthorizationRequiredError("private"), http.StatusForbidden},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewConflictError("busy"), http.StatusConflict},
		{NewInternalError("op", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestWithStatusCopies(t *testing.T) {
	original := NewAuthorizationError("password does not match")
	overridden := WithStatus(original, http.StatusForbidden)

	var appErr *AppError
	assert.True(t, errors.As(overridden, &appErr))
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus())
	assert.Equal(t, KindAuthorization, appErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, original.HTTPStatus())

	plain := errors.New("plain")
	assert.Same(t, plain, WithStatus(plain, http.StatusForbidden))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewNotFoundError("group not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(nil, KindInternal))
	assert.Equal(t, KindInternal, KindOf(errors.New("unknown")))
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("group.create", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.Contains(t, err.Error(), "group.create")
}

package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthorization
	KindAuthorizationRequired
	KindNotFound
	KindConflict
)

// AppError is the error type returned by services. Message is safe to show
// to clients; Err carries the underlying cause for server-side logs only.
type AppError struct {
	Kind    ErrorKind
	Message string
	Op      string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a status code. Status overrides it
// for endpoints whose contract answers a password mismatch with 403.
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindAuthorizationRequired:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewAuthorizationRequiredError(message string) *AppError {
	return &AppError{Kind: KindAuthorizationRequired, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewInternalError(op string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Op: op, Err: err}
}

// WithStatus returns a copy of err that renders with the given HTTP status.
func WithStatus(err error, status int) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err
	}
	cp := *appErr
	cp.Status = status
	return &cp
}

func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

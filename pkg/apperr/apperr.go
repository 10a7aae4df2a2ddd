// Package apperr is the error taxonomy shared by every bounded context.
// Services return errors that wrap one of the kind sentinels; transports map
// kinds to status codes with HTTPStatus.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnknownTransition = errors.New("unknown transition")
	ErrGateway           = errors.New("payment gateway error")
)

// Error is a classified error with a stable machine-readable code.
type Error struct {
	Kind error
	Code string
	Msg  string
}

func New(kind error, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// HTTPStatus maps err to an HTTP status, a machine code and a client-safe message.
func HTTPStatus(err error) (int, string, string) {
	status, code := kindStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}

	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		code = ae.Code
	}
	return status, code, msg
}

func kindStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, ErrUnknownTransition):
		return http.StatusUnprocessableEntity, "UNKNOWN_TRANSITION"
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway, "PAYMENT_GATEWAY"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

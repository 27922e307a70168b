package constants

import (
	"errors"
	"net/http"
)

// CodedError is an error that knows which HTTP status it maps to.
type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound           = NewCodedError("not found", http.StatusNotFound)
	ErrAlreadyExists        = NewCodedError("already exists", http.StatusConflict)
	ErrUnauthorized         = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrMissingAuthToken     = NewCodedError("missing auth token", http.StatusUnauthorized)
	ErrInvalidCredentials   = NewCodedError("invalid credentials", http.StatusUnauthorized)
	ErrForbidden            = NewCodedError("forbidden", http.StatusForbidden)
	ErrBadRequest           = NewCodedError("bad request", http.StatusBadRequest)
	ErrMissingInput         = NewCodedError("missing required input", http.StatusBadRequest)
	ErrUnknownPrefKey       = NewCodedError("unknown preference key", http.StatusBadRequest)
	ErrBackend              = NewCodedError("simulation backend error", http.StatusBadGateway)
	ErrBillingNotConfigured = NewCodedError("billing is not configured", http.StatusServiceUnavailable)
	ErrNoCustomer           = NewCodedError("no billing customer for user", http.StatusBadRequest)
)

// CodeOf returns the HTTP status carried by the first CodedError in err's chain.
func CodeOf(err error) int {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return http.StatusInternalServerError
}

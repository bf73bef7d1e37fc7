package scheduling

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a scheduling failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindPermission   Kind = "permission"
	KindNotFound     Kind = "not_found"
	KindState        Kind = "state"
	KindAccessDenied Kind = "access_denied"
)

// Error is the one error type the scheduling core surfaces. Status is the
// HTTP status the transport layer answers with; Message is safe to show to
// callers and never contains a stored meeting password.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, status int, format string, args ...any) *Error {
	return &Error{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return newError(KindValidation, http.StatusBadRequest, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return newError(KindConflict, http.StatusConflict, format, args...)
}

func Permissionf(format string, args ...any) *Error {
	return newError(KindPermission, http.StatusForbidden, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, format, args...)
}

func Statef(format string, args ...any) *Error {
	return newError(KindState, http.StatusConflict, format, args...)
}

func AccessDeniedf(format string, args ...any) *Error {
	return newError(KindAccessDenied, http.StatusForbidden, format, args...)
}

// AsError unwraps err to a scheduling *Error if there is one in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a scheduling error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

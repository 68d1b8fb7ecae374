package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInvalidRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindUpstream
)

// Error is the only error type the handler translates into a non-500 response.
// Detail is returned to clients as-is; callers match on it.
type Error struct {
	Kind    Kind
	Detail  string
	Service string
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindUpstream {
		if e.Err != nil {
			return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
		}
		return fmt.Sprintf("%s request failed", e.Service)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidRequest(detail string) error {
	return &Error{Kind: KindInvalidRequest, Detail: detail}
}

func Unauthorized(detail string) error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

func Forbidden(detail string) error {
	return &Error{Kind: KindForbidden, Detail: detail}
}

// Upstream wraps a failed call to a sibling or ranking service.
func Upstream(service string, err error) error {
	return &Error{Kind: KindUpstream, Service: service, Err: err}
}

// As returns the outermost *Error in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Detail is the client-facing message for err.
func Detail(err error) string {
	if e, ok := As(err); ok {
		return e.Error()
	}
	return "Internal server error"
}

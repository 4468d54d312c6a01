// Package apperrors defines the closed error taxonomy shared by the
// services and mapped to HTTP status codes at the handler boundary.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error into the closed taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidRequest marks malformed or missing input, caught before
	// any state mutation.
	KindInvalidRequest
	// KindConflict marks an inventory or state precondition violated
	// before any irreversible action.
	KindConflict
	// KindPaymentRequired marks a gateway decline or gateway error.
	KindPaymentRequired
	// KindForbidden marks a state-machine precondition violation, e.g.
	// cancelling an order that is not cancellable.
	KindForbidden
	// KindNotFound marks a missing record.
	KindNotFound
	// KindInternal marks store or transaction failure.
	KindInternal
)

// Error carries a taxonomy kind, a client-safe message and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidRequest builds a KindInvalidRequest error.
func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

// Conflict builds a KindConflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// PaymentRequired builds a KindPaymentRequired error wrapping the gateway
// failure.
func PaymentRequired(message string, err error) *Error {
	return &Error{Kind: KindPaymentRequired, Message: message, Err: err}
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal builds a KindInternal error wrapping the underlying failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from err, or KindUnknown when err does
// not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusCode maps an error to the HTTP status the handlers respond with.
// Unclassified errors are treated as internal.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindInvalidRequest, KindConflict:
		return fiber.StatusBadRequest
	case KindPaymentRequired:
		return fiber.StatusPaymentRequired
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-safe message for err, falling back to a
// generic string for unclassified errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindNotFound               ErrorKind = "not_found"
	KindForbidden              ErrorKind = "forbidden"
	KindUnauthorized           ErrorKind = "unauthorized"
	KindValidation             ErrorKind = "validation_error"
	KindConflict               ErrorKind = "conflict"
	KindInvalidTransition      ErrorKind = "invalid_transition"
	KindInvalidPaymentMethod   ErrorKind = "invalid_payment_method"
	KindAlreadyPaid            ErrorKind = "already_paid"
	KindInsufficientPoints     ErrorKind = "insufficient_points"
	KindBelowMinimumRedemption ErrorKind = "below_minimum_redemption"
	KindProgramDisabled        ErrorKind = "program_disabled"
	KindCustomerExcluded       ErrorKind = "customer_excluded"
)

// Error is a business failure that is reported to the caller as is.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries a business error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}

// notFoundOr turns a missing row into a NotFound error and wraps anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, "%s not found", what)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

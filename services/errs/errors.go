// Package errs holds the error taxonomy shared by the booking, payment and
// messaging services. Every *Error matches its sentinel with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeNotFound                  Code = "NOT_FOUND"
	CodeInvalidTransition         Code = "INVALID_TRANSITION"
	CodeInvalidAmount             Code = "INVALID_AMOUNT"
	CodePaymentDeclined           Code = "PAYMENT_DECLINED"
	CodePaymentGatewayUnreachable Code = "PAYMENT_GATEWAY_UNREACHABLE"
	CodeSlotUnavailable           Code = "SLOT_UNAVAILABLE"
	CodeForbidden                 Code = "FORBIDDEN"
	CodeValidation                Code = "VALIDATION_FAILED"
)

var (
	ErrNotFound                  = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrInvalidTransition         = &Error{Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrInvalidAmount             = &Error{Code: CodeInvalidAmount, Message: "amount must be a positive integer"}
	ErrPaymentDeclined           = &Error{Code: CodePaymentDeclined, Message: "payment was declined"}
	ErrPaymentGatewayUnreachable = &Error{Code: CodePaymentGatewayUnreachable, Message: "payment gateway unreachable", Retryable: true}
	ErrSlotUnavailable           = &Error{Code: CodeSlotUnavailable, Message: "time slot is not available"}
	ErrForbidden                 = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation                = &Error{Code: CodeValidation, Message: "validation failed"}
)

// Error is a structured application error.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	cause     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(base *Error, details string, cause error) *Error {
	return &Error{
		Code:      base.Code,
		Message:   base.Message,
		Details:   details,
		Retryable: base.Retryable,
		cause:     cause,
	}
}

func NotFound(kind, id string) *Error {
	return newErr(ErrNotFound, fmt.Sprintf("%s %s", kind, id), nil)
}

func InvalidAmount(amount int64) *Error {
	return newErr(ErrInvalidAmount, fmt.Sprintf("got %d", amount), nil)
}

func PaymentDeclined(reason string) *Error {
	return newErr(ErrPaymentDeclined, reason, nil)
}

func PaymentGatewayUnreachable(cause error) *Error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return newErr(ErrPaymentGatewayUnreachable, details, cause)
}

func SlotUnavailable(creativeID, date, start, end string) *Error {
	return newErr(ErrSlotUnavailable, fmt.Sprintf("creative %s on %s %s-%s", creativeID, date, start, end), nil)
}

func Forbidden(details string) *Error {
	return newErr(ErrForbidden, details, nil)
}

func Validation(format string, args ...any) *Error {
	return newErr(ErrValidation, fmt.Sprintf(format, args...), nil)
}

// InvalidTransitionError carries the attempted and allowed states so callers
// can show why an action was rejected.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	allowed := "none (terminal)"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("%s: cannot move from %q to %q; allowed: %s", CodeInvalidTransition, e.From, e.To, allowed)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return "", false
	}
	var it *InvalidTransitionError
	if errors.As(err, &it) {
		return CodeInvalidTransition, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

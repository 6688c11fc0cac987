// Package flow defines the typed error values returned by the registration
// and subscription orchestration services. Callers branch on the error kind
// instead of matching message text.
package flow

import (
	"errors"
	"fmt"
)

// Kind classifies an orchestration failure.
type Kind string

const (
	// KindValidation covers local pre-submission failures that must never
	// reach a collaborator.
	KindValidation Kind = "validation"
	// KindConflict covers server-reported states that already match the
	// desired end state, e.g. a cancellation that is already scheduled.
	KindConflict Kind = "conflict"
	// KindTerminalAccountState blocks forward progress permanently for the
	// session, e.g. an email that resolved to a paid account.
	KindTerminalAccountState Kind = "terminal_account_state"
	// KindPaymentVerifiedLoginFailed means payment succeeded server-side but
	// no session could be established; the user must log in manually and
	// must never be prompted to pay again.
	KindPaymentVerifiedLoginFailed Kind = "payment_verified_login_failed"
	// KindTransient covers network/backend failures that are safe to retry
	// by re-invoking the same action.
	KindTransient Kind = "transient"
	// KindFatal covers non-retryable collaborator misbehavior; the user must
	// re-submit explicitly.
	KindFatal Kind = "fatal"
)

// Diagnostic codes attached to fatal errors.
const (
	// CodeCheckoutNoURL distinguishes a checkout-session response without a
	// redirect URL (backend misconfiguration) from transient failures.
	CodeCheckoutNoURL = "checkout_no_url"
)

// Error is a typed orchestration failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation returns a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Terminal returns a terminal-account-state error.
func Terminal(message string) *Error {
	return &Error{Kind: KindTerminalAccountState, Message: message}
}

// PaymentVerifiedLoginFailed returns the payment-succeeded-but-no-session error.
func PaymentVerifiedLoginFailed(message string) *Error {
	return &Error{Kind: KindPaymentVerifiedLoginFailed, Message: message}
}

// Transient wraps a retryable failure.
func Transient(message string, cause error) *Error {
	return &Error{Kind: KindTransient, Message: message, cause: cause}
}

// Fatal returns a non-retryable error with a diagnostic code.
func Fatal(code, message string) *Error {
	return &Error{Kind: KindFatal, Code: code, Message: message}
}

// KindOf reports the kind of err, or KindTransient when err is not a typed
// orchestration error (unknown failures are treated as retryable).
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// CodeOf returns the diagnostic code of err, if any.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

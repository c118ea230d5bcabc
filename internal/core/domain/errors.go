// Package domain contains the core business entities for the payment service.
package domain

import "errors"

// ErrorKind is the closed set of failure categories. Callers branch on the
// kind, never on message text.
type ErrorKind string

const (
	// KindValidation covers malformed instrument data (bad card checksum,
	// bad tax id). Rejected before any network call, never retried.
	KindValidation ErrorKind = "validation"

	// KindAuth covers webhook signature mismatches and missing secrets.
	KindAuth ErrorKind = "auth"

	// KindState covers invalid transitions and expired quotes.
	KindState ErrorKind = "state"

	// KindProvider covers timeouts, 5xx responses and malformed provider
	// responses. Candidates for caller-driven retry with a fresh
	// idempotency key.
	KindProvider ErrorKind = "provider"

	// KindUnsupported marks a capability the selected adapter does not
	// implement. Non-retryable.
	KindUnsupported ErrorKind = "unsupported"
)

// Sentinel errors - represent specific business rule violations.
var (
	// ErrInvalidCardNumber is returned when a card number fails the Luhn check.
	ErrInvalidCardNumber = errors.New("invalid card number")

	// ErrInvalidTaxID is returned when a CPF/CNPJ fails check-digit validation.
	ErrInvalidTaxID = errors.New("invalid tax id")

	// ErrInvalidAmount is returned for non-positive payment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSecretNotConfigured is returned when the webhook secret is absent.
	// This is a server misconfiguration, not a client error.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")

	// ErrSignatureMissing is returned for an absent or empty signature header
	// or an empty request body.
	ErrSignatureMissing = errors.New("webhook signature missing")

	// ErrSignatureMismatch is returned when the computed digest does not
	// match the received signature.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")

	// ErrMalformedPayload is returned when an authenticated webhook body
	// cannot be parsed. Distinct from signature failure: the sender proved
	// knowledge of the secret but sent garbage.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrQuoteExpired is returned when a transfer is attempted against an
	// expired quote. The caller should request a fresh quote, not retry.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrRecipientIncomplete is returned when required recipient fields are
	// missing for the quote's currency.
	ErrRecipientIncomplete = errors.New("recipient is missing required fields")

	// ErrInvalidTransition is returned for an illegal state machine step.
	ErrInvalidTransition = errors.New("invalid transfer state transition")

	// ErrTransferFinalized is returned for any mutation of a terminal transfer.
	ErrTransferFinalized = errors.New("transfer already finalized")

	// ErrTransferNotFound is returned when a transfer id is unknown.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrCapabilityNotSupported is returned when an adapter does not
	// implement the requested operation.
	ErrCapabilityNotSupported = errors.New("capability not supported by this provider")

	// ErrProviderNotConfigured is returned when a named provider has no
	// registered adapter.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrProviderCall is returned when a provider call fails at the
	// transport or protocol level.
	ErrProviderCall = errors.New("provider call failed")

	// ErrProviderTimeout is returned when an outbound call exceeds its
	// deadline. Retryable, unlike a decline.
	ErrProviderTimeout = errors.New("provider call timed out")
)

// Error wraps a sentinel with its kind and structured context.
type Error struct {
	Kind    ErrorKind
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given kind and context.
func NewError(kind ErrorKind, err error, message, code string) *Error {
	return &Error{Kind: kind, Err: err, Message: message, Code: code}
}

// KindOf extracts the error kind, defaulting to KindProvider for wrapped
// errors of unknown shape.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindProvider
}

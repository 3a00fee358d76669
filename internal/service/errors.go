package service

import "errors"

// Domain-level error values returned by the ledger services. Handlers map
// these to HTTP statuses with errors.Is.
var (
	// ErrCheckoutProvider wraps payment-provider failures during session
	// creation. Retryable; no purchase row exists when it is returned.
	ErrCheckoutProvider = errors.New("checkout provider error")

	// ErrPurchaseNotFound means a fulfillment notification referenced a
	// session id we never opened. Logged at error level: it points at
	// provider misconfiguration or tampering, not a retryable glitch.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrInsufficientCredits is a normal business outcome, not a fault.
	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrCreditNotFound = errors.New("credit not found")

	// ErrCreditNotClaimed rejects binding a job to a credit that was never
	// claimed.
	ErrCreditNotClaimed = errors.New("credit not claimed")

	// ErrCreditAlreadyBound rejects rebinding a credit to a second job.
	ErrCreditAlreadyBound = errors.New("credit already bound to a job")
)

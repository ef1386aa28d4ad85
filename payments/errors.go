package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable covers network trouble or timeouts talking to a
	// provider. The order stays pending and the caller may retry.
	ErrProviderUnavailable = errors.New("payments: provider unavailable")

	// ErrSignatureInvalid means a webhook payload failed its signature check.
	// Fails closed: no field of the payload is interpreted.
	ErrSignatureInvalid = errors.New("payments: invalid webhook signature")

	// ErrUnknownReference means a verification arrived for a gateway reference
	// with no matching payment attempt.
	ErrUnknownReference = errors.New("payments: unknown gateway reference")

	// ErrAmountMismatch means the provider reported success but the amount
	// paid does not match what the attempt expected.
	ErrAmountMismatch = errors.New("payments: paid amount does not match expected amount")

	// ErrVerificationUnsupported is returned by manual methods, which are
	// confirmed by an audited admin action instead of a provider API.
	ErrVerificationUnsupported = errors.New("payments: method has no provider verification")

	ErrOrderNotPayable = errors.New("payments: order is not awaiting payment")
)

// MethodUnavailableError is returned before any provider is contacted when the
// selected method is disabled or the order amount falls outside its band.
type MethodUnavailableError struct {
	Method Method
	Reason string
}

func (e *MethodUnavailableError) Error() string {
	return fmt.Sprintf("payment method %s unavailable: %s", e.Method, e.Reason)
}

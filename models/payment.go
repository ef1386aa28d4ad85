package models

import "time"

type AttemptStatus string
type AttemptOutcome string

const (
	// Payment attempt statuses. verified and failed are terminal: once a
	// gateway reference reaches either, re-delivery of the same reference is
	// answered from the recorded outcome and never re-applied.
	AttemptInitiated AttemptStatus = "initiated"
	AttemptVerified  AttemptStatus = "verified"
	AttemptFailed    AttemptStatus = "failed"

	OutcomeOK             AttemptOutcome = "ok"
	OutcomeDeclined       AttemptOutcome = "declined"
	OutcomeAmountMismatch AttemptOutcome = "amount_mismatch"
)

// PaymentAttempt is one try at paying for an order via one provider. An order
// may accumulate several attempts across retries; each is keyed by the
// provider-scoped gateway reference that callbacks and webhooks carry.
type PaymentAttempt struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderID          uint           `gorm:"index;not null" json:"order_id"`
	Provider         string         `gorm:"uniqueIndex:idx_provider_reference;not null" json:"provider"`
	GatewayReference string         `gorm:"uniqueIndex:idx_provider_reference;not null" json:"gateway_reference"`
	AmountExpected   float64        `json:"amount_expected"`
	Currency         string         `json:"currency"`
	Status           AttemptStatus  `gorm:"column:attempt_status;type:VARCHAR(20);default:'initiated'" json:"attempt_status"`
	Outcome          AttemptOutcome `gorm:"type:VARCHAR(20)" json:"outcome"`
	RawPayload       string         `gorm:"type:text" json:"-"`     // provider's canonical payload, kept for audit
	ConfirmedBy      string         `json:"confirmed_by,omitempty"` // admin actor for manual confirmations
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Terminal reports whether the attempt has been reconciled.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptVerified || s == AttemptFailed
}

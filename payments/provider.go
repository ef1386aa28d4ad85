package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type Method string

const (
	MethodPaystack     Method = "paystack"
	MethodFlutterwave  Method = "flutterwave"
	MethodBankTransfer Method = "bank_transfer"
	MethodCOD          Method = "cod"
	MethodWhatsApp     Method = "whatsapp"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodPaystack:
		return MethodPaystack, nil
	case MethodFlutterwave:
		return MethodFlutterwave, nil
	case MethodBankTransfer:
		return MethodBankTransfer, nil
	case MethodCOD:
		return MethodCOD, nil
	case MethodWhatsApp:
		return MethodWhatsApp, nil
	default:
		return "", errors.New("unknown payment method: " + s)
	}
}

// Hosted reports whether the method redirects to a provider-hosted payment
// page. Non-hosted methods are settled manually and confirmed by an admin.
func (m Method) Hosted() bool {
	return m == MethodPaystack || m == MethodFlutterwave
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type InitiateRequest struct {
	Reference   string  // our gateway reference, persisted before the call
	OrderRef    string
	Amount      float64 // major units
	Currency    string
	Contact     Contact
	CallbackURL string
}

type InitiateResponse struct {
	AuthorizationURL string              // hosted payment page, empty for manual methods
	Instructions     *ManualInstructions // set only by manual methods
}

// ManualInstructions is the confirmation payload for methods that settle
// outside any provider: what to tell the customer so an admin can later match
// the payment to the attempt.
type ManualInstructions struct {
	Note          string `json:"note"`
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	WhatsAppLink  string `json:"whatsapp_link,omitempty"`
}

type VerificationStatus string

const (
	VerificationSuccess VerificationStatus = "success"
	VerificationFailed  VerificationStatus = "failed"
)

// VerificationResult is a provider's authoritative view of one payment
// session, produced either by the synchronous verify API or by a validated
// webhook. Raw keeps the canonical payload for audit.
type VerificationResult struct {
	Reference   string
	Status      VerificationStatus
	AmountPaid  float64 // major units
	Currency    string
	Raw         []byte
	ConfirmedBy string // set only by the audited manual confirmation path
}

// Provider is one payment backend. Implementations must never trust redirect
// query parameters: VerifySync re-fetches status from the provider and
// VerifyWebhook validates the payload signature before reading any field.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error)
	VerifySync(ctx context.Context, reference string) (VerificationResult, error)
	VerifyWebhook(ctx context.Context, body []byte, header http.Header) (VerificationResult, error)
}

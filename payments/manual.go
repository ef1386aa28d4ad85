package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// manualProvider covers methods settled outside any gateway: bank transfer,
// cash on delivery and the WhatsApp flow. Initiation produces the customer
// instructions; settlement is recorded later through the audited admin
// confirmation, never through a provider verify call.
type manualProvider struct {
	method Method
	cfg    Config
}

func newManualProvider(method Method, cfg Config) *manualProvider {
	return &manualProvider{method: method, cfg: cfg}
}

func (p *manualProvider) Name() string { return string(p.method) }

func (p *manualProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	switch p.method {
	case MethodBankTransfer:
		return InitiateResponse{Instructions: &ManualInstructions{
			Note: fmt.Sprintf("Transfer exactly %s %.2f to the account below and quote reference %s. Your order is confirmed once the transfer is sighted.",
				req.Currency, req.Amount, req.Reference),
			BankName:      p.cfg.BankName,
			AccountName:   p.cfg.BankAccountName,
			AccountNumber: p.cfg.BankAccountNumber,
		}}, nil

	case MethodWhatsApp:
		message := fmt.Sprintf("Hello! I want to pay for order %s (%s %.2f). Payment reference: %s.",
			req.OrderRef, req.Currency, req.Amount, req.Reference)
		link := fmt.Sprintf("https://wa.me/%s?text=%s",
			strings.TrimPrefix(p.cfg.WhatsAppNumber, "+"), url.QueryEscape(message))
		return InitiateResponse{Instructions: &ManualInstructions{
			Note:         "Complete your payment over WhatsApp using the link below. An agent confirms your order once payment is received.",
			WhatsAppLink: link,
		}}, nil

	case MethodCOD:
		return InitiateResponse{Instructions: &ManualInstructions{
			Note: fmt.Sprintf("Pay %s %.2f in cash when your order %s is delivered.",
				req.Currency, req.Amount, req.OrderRef),
		}}, nil

	default:
		return InitiateResponse{}, fmt.Errorf("payments: method %s is not manual", p.method)
	}
}

func (p *manualProvider) VerifySync(ctx context.Context, reference string) (VerificationResult, error) {
	return VerificationResult{}, ErrVerificationUnsupported
}

func (p *manualProvider) VerifyWebhook(ctx context.Context, body []byte, header http.Header) (VerificationResult, error) {
	return VerificationResult{}, ErrVerificationUnsupported
}

package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
)

// paystackProvider talks to the Paystack transaction API. Amounts cross the
// wire in minor units (kobo); VerificationResult carries major units.
type paystackProvider struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func newPaystackProvider(cfg Config) *paystackProvider {
	return &paystackProvider{
		secretKey: cfg.PaystackSecretKey,
		baseURL:   strings.TrimRight(cfg.PaystackBaseURL, "/"),
		client:    &http.Client{Timeout: cfg.ProviderTimeout},
	}
}

func (p *paystackProvider) Name() string { return string(MethodPaystack) }

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *paystackProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	payload := map[string]interface{}{
		"amount":       int64(math.Round(req.Amount * 100)),
		"currency":     req.Currency,
		"email":        req.Contact.Email,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
		"metadata": map[string]string{
			"order_ref": req.OrderRef,
		},
	}

	body, err := p.post(ctx, "/transaction/initialize", payload)
	if err != nil {
		return InitiateResponse{}, err
	}

	var resp paystackInitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return InitiateResponse{}, fmt.Errorf("paystack: parse initialize response: %w", err)
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return InitiateResponse{}, fmt.Errorf("paystack: initialize rejected: %s", resp.Message)
	}

	return InitiateResponse{AuthorizationURL: resp.Data.AuthorizationURL}, nil
}

type paystackTransaction struct {
	Status    string  `json:"status"` // "success", "failed", "abandoned"
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"` // minor units
	Currency  string  `json:"currency"`
}

type paystackVerifyResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    paystackTransaction `json:"data"`
}

// VerifySync re-fetches the authoritative transaction status. Redirect query
// parameters from the hosted page are never trusted beyond the reference.
func (p *paystackProvider) VerifySync(ctx context.Context, reference string) (VerificationResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return VerificationResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return VerificationResult{}, fmt.Errorf("%w: verify returned %d", ErrProviderUnavailable, httpResp.StatusCode)
	}

	var resp paystackVerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return VerificationResult{}, fmt.Errorf("paystack: parse verify response: %w", err)
	}
	if !resp.Status {
		return VerificationResult{}, fmt.Errorf("paystack: verify rejected: %s", resp.Message)
	}

	return p.toResult(resp.Data, body), nil
}

type paystackEvent struct {
	Event string              `json:"event"` // e.g. "charge.success"
	Data  paystackTransaction `json:"data"`
}

// VerifyWebhook validates the HMAC-SHA512 signature over the raw body before
// interpreting any field. The signed payload itself is authoritative.
func (p *paystackProvider) VerifyWebhook(ctx context.Context, body []byte, header http.Header) (VerificationResult, error) {
	provided := header.Get("x-paystack-signature")
	if provided == "" {
		return VerificationResult{}, ErrSignatureInvalid
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return VerificationResult{}, ErrSignatureInvalid
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return VerificationResult{}, fmt.Errorf("paystack: parse webhook payload: %w", err)
	}
	if event.Data.Reference == "" {
		return VerificationResult{}, fmt.Errorf("paystack: webhook payload missing reference")
	}

	return p.toResult(event.Data, body), nil
}

func (p *paystackProvider) toResult(tx paystackTransaction, raw []byte) VerificationResult {
	status := VerificationFailed
	if tx.Status == "success" {
		status = VerificationSuccess
	}
	return VerificationResult{
		Reference:  tx.Reference,
		Status:     status,
		AmountPaid: tx.Amount / 100,
		Currency:   tx.Currency,
		Raw:        raw,
	}
}

func (p *paystackProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrProviderUnavailable, path, resp.StatusCode)
	}
	return body, nil
}

package payments

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// flutterwaveProvider talks to the Flutterwave v3 API. Its webhook only
// carries a shared-secret hash, not a payload signature, so the webhook path
// re-verifies through the transaction API before reporting anything.
type flutterwaveProvider struct {
	secretKey  string
	secretHash string
	baseURL    string
	client     *http.Client
}

func newFlutterwaveProvider(cfg Config) *flutterwaveProvider {
	return &flutterwaveProvider{
		secretKey:  cfg.FlutterwaveSecretKey,
		secretHash: cfg.FlutterwaveSecretHash,
		baseURL:    strings.TrimRight(cfg.FlutterwaveBaseURL, "/"),
		client:     &http.Client{Timeout: cfg.ProviderTimeout},
	}
}

func (p *flutterwaveProvider) Name() string { return string(MethodFlutterwave) }

type flutterwaveInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (p *flutterwaveProvider) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	payload := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       req.Amount,
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email":       req.Contact.Email,
			"phonenumber": req.Contact.Phone,
			"name":        req.Contact.Name,
		},
		"customizations": map[string]string{
			"title": "Order " + req.OrderRef,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return InitiateResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v3/payments", bytes.NewReader(data))
	if err != nil {
		return InitiateResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return InitiateResponse{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return InitiateResponse{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return InitiateResponse{}, fmt.Errorf("%w: payments returned %d", ErrProviderUnavailable, httpResp.StatusCode)
	}

	var resp flutterwaveInitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return InitiateResponse{}, fmt.Errorf("flutterwave: parse payments response: %w", err)
	}
	if resp.Status != "success" || resp.Data.Link == "" {
		return InitiateResponse{}, fmt.Errorf("flutterwave: payment creation rejected: %s", resp.Message)
	}

	return InitiateResponse{AuthorizationURL: resp.Data.Link}, nil
}

type flutterwaveVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"` // "successful", "failed"
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

func (p *flutterwaveProvider) VerifySync(ctx context.Context, reference string) (VerificationResult, error) {
	endpoint := p.baseURL + "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

	var resp flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return VerificationResult{}, fmt.Errorf("flutterwave: parse verify response: %w", err)
	}
	if resp.Status != "success" {
		return VerificationResult{}, fmt.Errorf("flutterwave: verify rejected: %s", resp.Message)
	}

	status := VerificationFailed
	if resp.Data.Status == "successful" {
		status = VerificationSuccess
	}
	return VerificationResult{
		Reference:  resp.Data.TxRef,
		Status:     status,
		AmountPaid: resp.Data.Amount,
		Currency:   resp.Data.Currency,
		Raw:        body,
	}, nil
}

type flutterwaveWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		TxRef string `json:"tx_ref"`
	} `json:"data"`
	TxRef string `json:"txRef"` // legacy webhook shape
}

// VerifyWebhook checks the verif-hash shared secret, then treats the payload
// only as a hint: the reference is extracted and re-verified against the
// transaction API, since the body itself is not signed.
func (p *flutterwaveProvider) VerifyWebhook(ctx context.Context, body []byte, header http.Header) (VerificationResult, error) {
	if p.secretHash == "" {
		return VerificationResult{}, ErrSignatureInvalid
	}
	provided := header.Get("verif-hash")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(p.secretHash)) != 1 {
		return VerificationResult{}, ErrSignatureInvalid
	}

	var event flutterwaveWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return VerificationResult{}, fmt.Errorf("flutterwave: parse webhook payload: %w", err)
	}
	reference := event.Data.TxRef
	if reference == "" {
		reference = event.TxRef
	}
	if reference == "" {
		return VerificationResult{}, fmt.Errorf("flutterwave: webhook payload missing tx_ref")
	}

	return p.VerifySync(ctx, reference)
}

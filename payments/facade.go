package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

// Gateway is the single entry point the checkout flow calls. It owns the
// provider adapters, the payment attempt lifecycle and reconciliation.
type Gateway struct {
	db        *gorm.DB
	cfg       Config
	providers map[Method]Provider
	log       *zap.Logger

	// notify, when set, is called after an order changes state through
	// reconciliation (wired to the order websocket feed in main).
	notify func(models.Order)
}

func NewGateway(db *gorm.DB, cfg Config, log *zap.Logger) *Gateway {
	return &Gateway{
		db:  db,
		cfg: cfg,
		log: log,
		providers: map[Method]Provider{
			MethodPaystack:     newPaystackProvider(cfg),
			MethodFlutterwave:  newFlutterwaveProvider(cfg),
			MethodBankTransfer: newManualProvider(MethodBankTransfer, cfg),
			MethodCOD:          newManualProvider(MethodCOD, cfg),
			MethodWhatsApp:     newManualProvider(MethodWhatsApp, cfg),
		},
	}
}

// OnOrderUpdate registers the callback invoked whenever reconciliation moves
// an order forward.
func (g *Gateway) OnOrderUpdate(fn func(models.Order)) { g.notify = fn }

func (g *Gateway) Config() Config { return g.cfg }

// Initiation is what checkout hands back to the client: either a hosted
// payment page to redirect to, or manual instructions.
type Initiation struct {
	OrderRef     string              `json:"order_ref"`
	Method       Method              `json:"method"`
	Reference    string              `json:"reference"`
	RedirectURL  string              `json:"redirect_url,omitempty"`
	Instructions *ManualInstructions `json:"instructions,omitempty"`
}

// MethodInfo is one entry of the method list offered to the checkout UI.
type MethodInfo struct {
	Method    Method  `json:"method"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
	Fee       float64 `json:"transaction_fee"`
}

// AvailableMethods is what the checkout UI is permitted to offer for the
// amount. Initiate re-validates the same predicate server-side.
func (g *Gateway) AvailableMethods(amount float64) []MethodInfo {
	var out []MethodInfo
	for _, mc := range g.cfg.AvailableMethods(amount) {
		out = append(out, MethodInfo{
			Method:    mc.Method,
			MinAmount: mc.MinAmount,
			MaxAmount: mc.MaxAmount,
			Fee:       g.cfg.TransactionFee(amount, mc.Method),
		})
	}
	return out
}

// Initiate creates a payment attempt for the order and starts the selected
// method. The attempt row is persisted before any provider is contacted so a
// later webhook can always be matched back, even if the user abandons the
// redirect. A provider failure leaves the attempt initiated, never failed,
// so an eventual webhook can still complete it. Nothing here marks an order
// paid; only a verified reconciliation may do that.
func (g *Gateway) Initiate(ctx context.Context, order *models.Order, method Method, contact Contact) (*Initiation, error) {
	mc, ok := g.cfg.Methods[method]
	if !ok {
		return nil, &MethodUnavailableError{Method: method, Reason: "not configured"}
	}
	if !mc.Available(order.TotalAmount) {
		reason := "disabled"
		if mc.Enabled {
			reason = fmt.Sprintf("amount %.2f outside band [%.2f, %.2f]", order.TotalAmount, mc.MinAmount, mc.MaxAmount)
		}
		return nil, &MethodUnavailableError{Method: method, Reason: reason}
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, ErrOrderNotPayable
	}

	provider := g.providers[method]
	reference := generateReference()

	attempt := models.PaymentAttempt{
		OrderID:          order.ID,
		Provider:         provider.Name(),
		GatewayReference: reference,
		AmountExpected:   order.TotalAmount,
		Currency:         g.cfg.Currency,
		Status:           models.AttemptInitiated,
	}
	if err := g.db.Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("payments: persist attempt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.ProviderTimeout)
	defer cancel()

	resp, err := provider.Initiate(callCtx, InitiateRequest{
		Reference:   reference,
		OrderRef:    order.OrderRef,
		Amount:      order.TotalAmount,
		Currency:    g.cfg.Currency,
		Contact:     contact,
		CallbackURL: g.callbackURL(provider.Name()),
	})
	if err != nil {
		// The attempt stays initiated: a timed-out call may still have
		// created a session whose webhook arrives later.
		g.log.Warn("payment initiation failed",
			zap.String("provider", provider.Name()),
			zap.String("gateway_reference", reference),
			zap.String("order_ref", order.OrderRef),
			zap.Error(err))
		if errors.Is(err, ErrProviderUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrProviderUnavailable
		}
		return nil, err
	}

	g.log.Info("payment initiated",
		zap.String("provider", provider.Name()),
		zap.String("gateway_reference", reference),
		zap.String("order_ref", order.OrderRef),
		zap.Float64("amount", order.TotalAmount))

	return &Initiation{
		OrderRef:     order.OrderRef,
		Method:       method,
		Reference:    reference,
		RedirectURL:  resp.AuthorizationURL,
		Instructions: resp.Instructions,
	}, nil
}

// HandleCallback serves the synchronous redirect leg: the reference from the
// query string is only a hint used to ask the provider for the authoritative
// status, which then flows through the same reconciliation as webhooks.
// It returns the redirect target for the browser.
func (g *Gateway) HandleCallback(ctx context.Context, providerName string, query map[string]string) (string, error) {
	provider, err := g.providerByName(providerName)
	if err != nil {
		return g.cfg.FailureURL, err
	}

	reference := callbackReference(query)
	if reference == "" {
		return g.cfg.FailureURL, ErrUnknownReference
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.ProviderTimeout)
	defer cancel()

	result, err := provider.VerifySync(callCtx, reference)
	if err != nil {
		g.log.Warn("callback verification failed",
			zap.String("provider", providerName),
			zap.String("gateway_reference", reference),
			zap.Error(err))
		return g.cfg.FailureURL, err
	}

	outcome, err := g.Reconcile(ctx, providerName, result)
	if err != nil {
		return g.cfg.FailureURL, err
	}
	if outcome.Status == models.AttemptVerified {
		return g.cfg.SuccessURL + "?order=" + outcome.OrderRef, nil
	}
	return g.cfg.FailureURL + "?order=" + outcome.OrderRef, nil
}

// HandleWebhook serves the asynchronous leg. The caller must respond 200 only
// on a nil error; reconciliation of an already-terminal attempt is a nil
// error (idempotent no-op) so provider retries are acknowledged.
func (g *Gateway) HandleWebhook(ctx context.Context, providerName string, body []byte, header http.Header) (*ReconcileOutcome, error) {
	provider, err := g.providerByName(providerName)
	if err != nil {
		return nil, err
	}

	result, err := provider.VerifyWebhook(ctx, body, header)
	if err != nil {
		if errors.Is(err, ErrSignatureInvalid) {
			g.log.Error("webhook signature rejected", zap.String("provider", providerName))
		}
		return nil, err
	}

	return g.Reconcile(ctx, providerName, result)
}

func (g *Gateway) providerByName(name string) (Provider, error) {
	method, err := ParseMethod(name)
	if err != nil {
		return nil, err
	}
	provider, ok := g.providers[method]
	if !ok {
		return nil, fmt.Errorf("payments: no provider for %s", name)
	}
	return provider, nil
}

func (g *Gateway) callbackURL(providerName string) string {
	return strings.TrimRight(g.cfg.CallbackBaseURL, "/") + "/payment/callback/" + providerName
}

// callbackReference pulls the session reference out of redirect query
// parameters, whatever the provider chose to call it.
func callbackReference(query map[string]string) string {
	for _, key := range []string{"reference", "trxref", "tx_ref"} {
		if v := query[key]; v != "" {
			return v
		}
	}
	return ""
}

func generateReference() string {
	return "PAY-" + time.Now().Format("20060102") + "-" + uuid.NewString()
}

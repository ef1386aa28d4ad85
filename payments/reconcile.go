package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

// amountTolerance absorbs float rounding from minor-unit conversions; any
// larger difference is treated as a mismatch.
const amountTolerance = 0.01

// ReconcileOutcome reports what a verification call did to the attempt and
// its order. AlreadyReconciled means the attempt was terminal before this
// call and the recorded outcome is being replayed.
type ReconcileOutcome struct {
	OrderRef          string                `json:"order_ref"`
	Provider          string                `json:"provider"`
	Reference         string                `json:"gateway_reference"`
	Status            models.AttemptStatus  `json:"attempt_status"`
	Outcome           models.AttemptOutcome `json:"outcome"`
	PaymentStatus     models.PaymentStatus  `json:"payment_status"`
	AlreadyReconciled bool                  `json:"already_reconciled"`
}

// Reconcile applies a provider's authoritative payment result to the order,
// exactly once. It is safe to call any number of times, concurrently, from
// the callback and webhook paths in any order: the attempt's conditional
// initiated->terminal transition is the single concurrency guard, so exactly
// one of any racing callers wins and touches the order.
func (g *Gateway) Reconcile(ctx context.Context, providerName string, result VerificationResult) (*ReconcileOutcome, error) {
	var attempt models.PaymentAttempt
	err := g.db.WithContext(ctx).
		Where("provider = ? AND gateway_reference = ?", providerName, result.Reference).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		g.log.Warn("verification for unknown reference",
			zap.String("provider", providerName),
			zap.String("gateway_reference", result.Reference))
		return nil, ErrUnknownReference
	}
	if err != nil {
		return nil, fmt.Errorf("payments: load attempt: %w", err)
	}

	if attempt.Status.Terminal() {
		return g.replay(ctx, attempt)
	}

	newStatus := models.AttemptVerified
	outcome := models.OutcomeOK
	if result.Status != VerificationSuccess {
		newStatus = models.AttemptFailed
		outcome = models.OutcomeDeclined
	} else if math.Abs(result.AmountPaid-attempt.AmountExpected) > amountTolerance {
		// Provider says success but the money does not match what this
		// attempt was for. Fail the attempt, never the order.
		newStatus = models.AttemptFailed
		outcome = models.OutcomeAmountMismatch
	}

	updates := map[string]interface{}{
		"attempt_status": newStatus,
		"outcome":        outcome,
		"raw_payload":    string(result.Raw),
		"updated_at":     time.Now(),
	}
	if result.ConfirmedBy != "" {
		updates["confirmed_by"] = result.ConfirmedBy
	}

	// Conditional transition: only the caller that still sees `initiated`
	// wins; everyone else replays the recorded outcome.
	res := g.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("id = ? AND attempt_status = ?", attempt.ID, models.AttemptInitiated).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("payments: transition attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := g.db.WithContext(ctx).First(&attempt, attempt.ID).Error; err != nil {
			return nil, fmt.Errorf("payments: reload attempt: %w", err)
		}
		return g.replay(ctx, attempt)
	}

	var order models.Order
	if err := g.db.WithContext(ctx).Preload("Items").First(&order, attempt.OrderID).Error; err != nil {
		return nil, fmt.Errorf("payments: load order: %w", err)
	}

	switch outcome {
	case models.OutcomeOK:
		if err := g.markOrderPaid(ctx, &order); err != nil {
			return nil, err
		}
		g.log.Info("payment reconciled",
			zap.String("provider", providerName),
			zap.String("gateway_reference", result.Reference),
			zap.String("order_ref", order.OrderRef))

	case models.OutcomeAmountMismatch:
		g.log.Error("payment amount mismatch",
			zap.String("provider", providerName),
			zap.String("gateway_reference", result.Reference),
			zap.String("order_ref", order.OrderRef),
			zap.Float64("amount_expected", attempt.AmountExpected),
			zap.Float64("amount_paid", result.AmountPaid))
		return nil, ErrAmountMismatch

	default:
		// Declined: the order's payment status stays pending so the
		// customer can retry with a fresh attempt.
		g.log.Info("payment declined",
			zap.String("provider", providerName),
			zap.String("gateway_reference", result.Reference),
			zap.String("order_ref", order.OrderRef))
	}

	return &ReconcileOutcome{
		OrderRef:      order.OrderRef,
		Provider:      providerName,
		Reference:     result.Reference,
		Status:        newStatus,
		Outcome:       outcome,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// markOrderPaid moves payment_status pending->paid and order status
// pending->confirmed. Both updates are conditional on the current state so a
// racing admin action can never be regressed; an order already beyond
// pending is left where it is.
func (g *Gateway) markOrderPaid(ctx context.Context, order *models.Order) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
			Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusConfirmed).Error
	})
	if err != nil {
		return fmt.Errorf("payments: apply paid state: %w", err)
	}

	if err := g.db.WithContext(ctx).Preload("Items").First(order, order.ID).Error; err != nil {
		return fmt.Errorf("payments: reload order: %w", err)
	}
	if g.notify != nil {
		g.notify(*order)
	}
	return nil
}

// replay answers a re-delivered verification from the recorded outcome
// without touching the order again.
func (g *Gateway) replay(ctx context.Context, attempt models.PaymentAttempt) (*ReconcileOutcome, error) {
	var order models.Order
	if err := g.db.WithContext(ctx).First(&order, attempt.OrderID).Error; err != nil {
		return nil, fmt.Errorf("payments: load order: %w", err)
	}

	g.log.Info("duplicate verification ignored",
		zap.String("provider", attempt.Provider),
		zap.String("gateway_reference", attempt.GatewayReference),
		zap.String("order_ref", order.OrderRef),
		zap.String("attempt_status", string(attempt.Status)))

	if attempt.Outcome == models.OutcomeAmountMismatch {
		return nil, ErrAmountMismatch
	}

	return &ReconcileOutcome{
		OrderRef:          order.OrderRef,
		Provider:          attempt.Provider,
		Reference:         attempt.GatewayReference,
		Status:            attempt.Status,
		Outcome:           attempt.Outcome,
		PaymentStatus:     order.PaymentStatus,
		AlreadyReconciled: true,
	}, nil
}

// manualProviderNames lists the methods settled outside any gateway, the
// only ones an admin confirmation may resolve.
var manualProviderNames = []string{
	string(MethodBankTransfer),
	string(MethodCOD),
	string(MethodWhatsApp),
}

// ConfirmManual is the audited confirmation for bank transfer, cash on
// delivery and WhatsApp payments: an explicit admin event functionally
// equivalent to a provider's "paid" signal. It resolves the order's latest
// open manual attempt regardless of the order's original method, since a
// payment retry may have switched from a hosted gateway to a manual one. The
// synthetic success is pushed through Reconcile, so the idempotency and
// racing guarantees are identical to the webhook path.
func (g *Gateway) ConfirmManual(ctx context.Context, orderRef, confirmedBy, note string) (*ReconcileOutcome, error) {
	if confirmedBy == "" {
		return nil, errors.New("payments: manual confirmation requires the confirming actor")
	}

	var order models.Order
	err := g.db.WithContext(ctx).Where("order_ref = ?", orderRef).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownReference
	}
	if err != nil {
		return nil, fmt.Errorf("payments: load order: %w", err)
	}

	var attempt models.PaymentAttempt
	err = g.db.WithContext(ctx).
		Where("order_id = ? AND attempt_status = ? AND provider IN ?", order.ID, models.AttemptInitiated, manualProviderNames).
		Order("created_at DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownReference
	}
	if err != nil {
		return nil, fmt.Errorf("payments: load attempt: %w", err)
	}

	raw, _ := json.Marshal(map[string]string{
		"confirmed_by": confirmedBy,
		"note":         note,
		"confirmed_at": time.Now().UTC().Format(time.RFC3339),
	})

	g.log.Info("manual payment confirmation",
		zap.String("order_ref", orderRef),
		zap.String("provider", attempt.Provider),
		zap.String("gateway_reference", attempt.GatewayReference),
		zap.String("confirmed_by", confirmedBy))

	return g.Reconcile(ctx, attempt.Provider, VerificationResult{
		Reference:   attempt.GatewayReference,
		Status:      VerificationSuccess,
		AmountPaid:  attempt.AmountExpected,
		Currency:    attempt.Currency,
		Raw:         raw,
		ConfirmedBy: confirmedBy,
	})
}

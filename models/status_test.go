package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		// no skipping ahead
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		// no regressions
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		// cancellation only before processing
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		// terminal states are absorbing
		{OrderStatusDelivered, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusPaid, PaymentStatusFailed, false},
		{PaymentStatusFailed, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("CONFIRMED"); err != nil {
		t.Errorf("expected case-insensitive parse, got %v", err)
	}
	if _, err := ParseOrderStatus("ready_to_ship"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name    string
		product Product
		want    float64
	}{
		{"discounted", Product{RegularPrice: 1000, SalePrice: 800}, 800},
		{"no sale price", Product{RegularPrice: 1000}, 1000},
		{"sale above regular ignored", Product{RegularPrice: 1000, SalePrice: 1200}, 1000},
	}
	for _, tc := range cases {
		if got := tc.product.EffectivePrice(); got != tc.want {
			t.Errorf("%s: got %.2f, want %.2f", tc.name, got, tc.want)
		}
	}
}

func TestAttemptStatusTerminal(t *testing.T) {
	if AttemptInitiated.Terminal() {
		t.Error("initiated must not be terminal")
	}
	if !AttemptVerified.Terminal() || !AttemptFailed.Terminal() {
		t.Error("verified and failed must be terminal")
	}
}

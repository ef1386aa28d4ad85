package cartControllers

import (
	"testing"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

func TestDeliveryFeeFor(t *testing.T) {
	pricing := PricingConfig{DeliveryFee: 500, FreeDeliveryThreshold: 50000}

	cases := []struct {
		subtotal float64
		want     float64
	}{
		{0, 0},
		{-10, 0},
		{1, 500},
		{49999.99, 500},
		{50000, 0}, // threshold is inclusive
		{120000, 0},
	}
	for _, tc := range cases {
		if got := pricing.DeliveryFeeFor(tc.subtotal); got != tc.want {
			t.Errorf("subtotal %.2f: fee %.2f, want %.2f", tc.subtotal, got, tc.want)
		}
	}
}

func TestDeliveryFeeForNoThreshold(t *testing.T) {
	pricing := PricingConfig{DeliveryFee: 500}
	if got := pricing.DeliveryFeeFor(1000000); got != 500 {
		t.Errorf("fee %.2f, want 500 when threshold is disabled", got)
	}
}

func TestBuildSummaryTotals(t *testing.T) {
	products := map[uint]models.Product{
		1: {ID: 1, Name: "Rice 5kg", RegularPrice: 8000, SalePrice: 7500, Stock: 10},
		2: {ID: 2, Name: "Palm Oil 1L", RegularPrice: 2500, Stock: 4},
	}
	items := []models.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}
	pricing := PricingConfig{DeliveryFee: 500, FreeDeliveryThreshold: 50000}

	summary := buildSummary(items, products, pricing)

	if len(summary.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(summary.Lines))
	}
	// effective price: sale price wins for product 1
	if summary.Lines[0].UnitPrice != 7500 {
		t.Errorf("unit price %.2f, want 7500", summary.Lines[0].UnitPrice)
	}
	wantSubtotal := 2*7500.0 + 3*2500.0
	if summary.Subtotal != wantSubtotal {
		t.Errorf("subtotal %.2f, want %.2f", summary.Subtotal, wantSubtotal)
	}
	if summary.DeliveryFee != 500 {
		t.Errorf("delivery fee %.2f, want 500", summary.DeliveryFee)
	}
	if summary.Total != wantSubtotal+500 {
		t.Errorf("total %.2f, want %.2f", summary.Total, wantSubtotal+500)
	}
}

func TestBuildSummaryClampsToStock(t *testing.T) {
	products := map[uint]models.Product{
		1: {ID: 1, Name: "Garri 2kg", RegularPrice: 1500, Stock: 2},
	}
	items := []models.CartItem{{ProductID: 1, Quantity: 5}}

	summary := buildSummary(items, products, PricingConfig{DeliveryFee: 500, FreeDeliveryThreshold: 50000})

	if summary.Lines[0].Quantity != 2 {
		t.Errorf("quantity %d, want clamp to stock 2", summary.Lines[0].Quantity)
	}
	if summary.Subtotal != 3000 {
		t.Errorf("subtotal %.2f, want 3000", summary.Subtotal)
	}
}

func TestBuildSummaryDropsUnavailableLines(t *testing.T) {
	products := map[uint]models.Product{
		2: {ID: 2, Name: "Sold Out", RegularPrice: 900, Stock: 0},
	}
	items := []models.CartItem{
		{ProductID: 1, Quantity: 1}, // product gone
		{ProductID: 2, Quantity: 1}, // out of stock
	}

	summary := buildSummary(items, products, PricingConfig{DeliveryFee: 500})

	if len(summary.Lines) != 0 {
		t.Fatalf("got %d lines, want 0", len(summary.Lines))
	}
	if summary.Total != 0 {
		t.Errorf("total %.2f, want 0 for empty summary", summary.Total)
	}
}

func TestBuildSummaryFreeDeliveryAboveThreshold(t *testing.T) {
	products := map[uint]models.Product{
		1: {ID: 1, Name: "Bag of Rice", RegularPrice: 60000, Stock: 3},
	}
	items := []models.CartItem{{ProductID: 1, Quantity: 1}}

	summary := buildSummary(items, products, PricingConfig{DeliveryFee: 500, FreeDeliveryThreshold: 50000})

	if summary.DeliveryFee != 0 {
		t.Errorf("delivery fee %.2f, want 0 above threshold", summary.DeliveryFee)
	}
	if summary.Total != 60000 {
		t.Errorf("total %.2f, want 60000", summary.Total)
	}
}

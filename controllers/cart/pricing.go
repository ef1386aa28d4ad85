package cartControllers

import (
	"errors"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

// PricingConfig drives the delivery fee step function: free above the
// threshold, flat fee otherwise.
type PricingConfig struct {
	DeliveryFee           float64
	FreeDeliveryThreshold float64
}

func LoadPricingConfig() PricingConfig {
	return PricingConfig{
		DeliveryFee:           envFloat("DELIVERY_FEE", 500),
		FreeDeliveryThreshold: envFloat("FREE_DELIVERY_THRESHOLD", 50000),
	}
}

func (c PricingConfig) DeliveryFeeFor(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if c.FreeDeliveryThreshold > 0 && subtotal >= c.FreeDeliveryThreshold {
		return 0
	}
	return c.DeliveryFee
}

type SummaryLine struct {
	ProductID    uint    `json:"product_id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	UnitPrice    float64 `json:"unit_price"` // discount-aware effective price
	RegularPrice float64 `json:"regular_price"`
	Quantity     int     `json:"quantity"` // clamped to live stock
	Stock        int     `json:"stock"`
	LineSubtotal float64 `json:"line_subtotal"`
}

type CartSummary struct {
	Lines       []SummaryLine `json:"lines"`
	Subtotal    float64       `json:"subtotal"`
	DeliveryFee float64       `json:"delivery_fee"`
	Total       float64       `json:"total"`
}

// Summary is a pure read projection: lines enriched with live price, discount
// and stock, recomputed on every call so drift since the items were added is
// always reflected before checkout. Quantities above current stock are
// clamped in the view but never written back.
func Summary(db *gorm.DB, actor Actor, pricing PricingConfig) (*CartSummary, error) {
	cart, err := findCart(db, actor, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &CartSummary{Lines: []SummaryLine{}}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return buildSummary(cart.Items, byID, pricing), nil
}

// buildSummary computes the projection from a cart's items and the live
// product rows. Items whose product no longer exists are dropped from view.
func buildSummary(items []models.CartItem, products map[uint]models.Product, pricing PricingConfig) *CartSummary {
	summary := &CartSummary{Lines: []SummaryLine{}}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}

		qty := item.Quantity
		if qty > product.Stock {
			qty = product.Stock
		}
		if qty <= 0 {
			continue
		}

		unit := product.EffectivePrice()
		line := SummaryLine{
			ProductID:    product.ID,
			Name:         product.Name,
			Image:        product.Image,
			UnitPrice:    unit,
			RegularPrice: product.RegularPrice,
			Quantity:     qty,
			Stock:        product.Stock,
			LineSubtotal: unit * float64(qty),
		}
		summary.Lines = append(summary.Lines, line)
		summary.Subtotal += line.LineSubtotal
	}

	summary.DeliveryFee = pricing.DeliveryFeeFor(summary.Subtotal)
	summary.Total = summary.Subtotal + summary.DeliveryFee
	return summary
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

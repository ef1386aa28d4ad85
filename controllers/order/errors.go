package orderControllers

import (
	"errors"
	"fmt"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

var (
	ErrCartEmpty     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// StockChangedError signals a race between the cart view and order creation:
// some line's quantity is no longer satisfiable. The whole creation is rolled
// back and the user must re-confirm.
type StockChangedError struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func (e *StockChangedError) Error() string {
	return fmt.Sprintf("stock changed for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError is an integrity violation: a caller asked for a move
// the status lattice forbids.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

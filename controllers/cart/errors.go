package cartControllers

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = errors.New("product does not exist")
)

// OutOfStockError is returned by AddItem when the requested quantity cannot
// be satisfied by current stock.
type OutOfStockError struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d out of stock: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// InsufficientStockError is returned by SetQuantity; Available carries the
// clamped maximum so the caller can offer a correction.
type InsufficientStockError struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, maximum %d", e.ProductID, e.Requested, e.Available)
}

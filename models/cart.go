package models

import "time"

// Cart is keyed by OwnerID: a registered user id or a guest token. One cart
// per owner; guest carts are merged into the user cart at login and deleted.
type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerID   string     `gorm:"uniqueIndex;not null" json:"owner_id"`
	Guest     bool       `json:"guest"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem holds only quantity and when it was added. Price, name and stock
// are read live from the product at summary time so drift is always visible
// before checkout; nothing is frozen until order creation.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

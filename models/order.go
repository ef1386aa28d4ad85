package models

import "time"

// Order is immutable once created: lines, prices and fees are snapshots taken
// at creation time and never follow later catalog changes. Only Status and
// PaymentStatus move, through the lattices in status.go.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderRef      string        `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID        *string       `gorm:"index" json:"user_id,omitempty"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	Address       Address       `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_address"`
	Notes         string        `json:"notes"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	DeliveryFee   float64       `json:"delivery_fee"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentMethod string        `json:"payment_method"` // e.g. "paystack", "cod"
	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

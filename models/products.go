package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Image        string         `json:"image"`
	RegularPrice float64        `gorm:"not null" json:"regular_price"`
	SalePrice    float64        `json:"sale_price"`
	Stock        int            `json:"stock"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectivePrice is the discount-aware price customers actually pay.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice > 0 && p.SalePrice < p.RegularPrice {
		return p.SalePrice
	}
	return p.RegularPrice
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductKind string

const (
	ProductKindSubscription ProductKind = "subscription"
	ProductKindCoins        ProductKind = "coins"
)

// Product is a read-mostly catalog entry. Price is what the buyer pays,
// Value is what fulfillment delivers (coin amount or subscription days).
type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Kind     ProductKind     `gorm:"type:varchar(32);not null" json:"kind"`
	Price    decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"price"`
	Value    int64           `gorm:"not null" json:"value"`
	Discount decimal.Decimal `gorm:"type:numeric(5,4);not null;default:0" json:"discount"`
	IsActive bool            `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "products" }

// EffectivePrice applies the product discount to the unit price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount.IsZero() {
		return p.Price
	}
	return p.Price.Mul(decimal.NewFromInt(1).Sub(p.Discount))
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// FulfillmentStatus tracks delivery independently of payment state.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "pending"
	FulfillmentCompleted FulfillmentStatus = "completed"
	FulfillmentCancelled FulfillmentStatus = "cancelled"
)

func (s FulfillmentStatus) IsTerminal() bool {
	return s == FulfillmentCompleted || s == FulfillmentCancelled
}

// UserOrder links an Order (1:1) to the Product it purchases.
type UserOrder struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int               `gorm:"not null;default:1" json:"quantity"`
	Status    FulfillmentStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (UserOrder) TableName() string { return "user_orders" }

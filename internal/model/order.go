package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeCrypto PaymentType = "crypto"
	PaymentTypeFiat   PaymentType = "fiat"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeCrypto || t == PaymentTypeFiat
}

// OrderStatus is the closed set of order states. The string form is a wire
// and storage detail; the transition table below is the authoritative
// contract.
type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusFailed          OrderStatus = "failed"
	OrderStatusRefunded        OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusAwaitingPayment, OrderStatusPaid,
		OrderStatusExpired, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid:
		// Paid still admits Refunded.
		return false
	case OrderStatusExpired, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:         {OrderStatusAwaitingPayment, OrderStatusExpired, OrderStatusFailed},
	OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusExpired, OrderStatusFailed},
	OrderStatusPaid:            {OrderStatusRefunded},
	OrderStatusExpired:         {},
	OrderStatusFailed:          {},
	OrderStatusRefunded:        {},
}

// CanTransition reports whether from -> to is a legal order state change.
// A same-state "transition" is not legal here; callers treat it as an
// idempotent no-op before consulting the table.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order carries a locked exchange rate for a bounded validity window.
// Amounts are arbitrary-precision decimals; floats never touch money.
type Order struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User       `gorm:"foreignKey:UserID" json:"-"`

	PaymentType       PaymentType `gorm:"type:varchar(16);not null" json:"payment_type"`
	ExternalPaymentID *string     `gorm:"type:varchar(255)" json:"external_payment_id,omitempty"`

	Amount       decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"amount"`
	FiatAmount   decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"fiat_amount"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"exchange_rate"`

	RateValidSeconds int        `gorm:"not null" json:"rate_valid_seconds"`
	CustomExpiration *int       `json:"custom_expiration,omitempty"`
	ExpireAt         time.Time  `gorm:"not null;index" json:"expire_at"`

	Status        OrderStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentData   []byte      `gorm:"type:jsonb" json:"payment_data,omitempty"`
	LastCheckedAt *time.Time  `json:"last_checked_at,omitempty"`
	PaidAt        *time.Time  `json:"paid_at,omitempty"`
	TransactionID string      `gorm:"type:varchar(255)" json:"transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// IsDue reports whether the order's validity window has elapsed.
func (o *Order) IsDue(now time.Time) bool {
	return now.After(o.ExpireAt)
}

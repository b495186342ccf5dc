package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry is an append-only record of one order state change.
// Rows are never updated or deleted. FromStatus is empty on the creation row.
type StatusHistoryEntry struct {
	ID         uint64      `gorm:"primaryKey" json:"id"`
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(32)" json:"from_status,omitempty"`
	ToStatus   OrderStatus `gorm:"type:varchar(32);not null" json:"to_status"`
	ChangedAt  time.Time   `gorm:"not null" json:"changed_at"`
	Metadata   []byte      `gorm:"type:jsonb" json:"metadata,omitempty"`
}

func (StatusHistoryEntry) TableName() string { return "order_status_history" }

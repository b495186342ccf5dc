package model

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode is single-use: Unused -> Redeemed is the only stored transition.
// Expiry is a computed predicate, never persisted.
type InviteCode struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code         string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsUsed       bool       `gorm:"not null;default:false" json:"is_used"`
	UsedByUserID *uuid.UUID `gorm:"type:uuid" json:"used_by_user_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (InviteCode) TableName() string { return "invite_codes" }

// IsExpired reports whether the code has passed its expiry at the given time.
// Codes without an expiry never expire.
func (c *InviteCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

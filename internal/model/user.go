package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username    string     `gorm:"type:varchar(255)" json:"username"`
	DisplayName string     `gorm:"type:varchar(255)" json:"display_name"`
	CoinBalance int64      `gorm:"not null;default:0" json:"coin_balance"`
	IsVIP       bool       `gorm:"not null;default:false" json:"is_vip"`
	VIPLevel    int        `gorm:"not null;default:0" json:"vip_level"`
	VIPUntil    *time.Time `json:"vip_until,omitempty"`
	IsPremium   bool       `gorm:"not null;default:false" json:"is_premium"`

	// Direct inviter; the full chain lives in the ancestry closure table.
	InviterID *uuid.UUID `gorm:"type:uuid;index" json:"inviter_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

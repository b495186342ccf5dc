package model

import (
	"time"

	"github.com/google/uuid"
)

// AncestryRow is one closure-table entry: AncestorID is reachable upward from
// DescendantID in exactly Depth invite hops. Every user has a (U, U, 0)
// self-row; rows are written once at join time and never updated, so the
// graph stays cycle-free by construction.
type AncestryRow struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	AncestorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ancestry_pair;index" json:"ancestor_id"`
	DescendantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ancestry_pair;index" json:"descendant_id"`
	Depth        int       `gorm:"not null" json:"depth"`

	// Audit provenance: the direct inviter whose join produced this row.
	OwnerID *uuid.UUID `gorm:"type:uuid" json:"owner_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (AncestryRow) TableName() string { return "referral_ancestry" }

// IsSelf reports whether the row is a user's depth-0 self-row.
func (r AncestryRow) IsSelf() bool {
	return r.Depth == 0 && r.AncestorID == r.DescendantID
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientPoints rejects a redemption larger than the client's balance.
var ErrInsufficientPoints = errors.New("insufficient points")

const (
	PointsEarned = "earned" // accrued automatically on a paid appointment
	PointsAdded  = "add"    // manual staff adjustment
	PointsRedeem = "redeem" // spent on a reward, stored negative
)

// PointsHistory is the append-only loyalty ledger. Entries are never edited
// or reordered; the client's balance is the running sum.
type PointsHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Type        string     `gorm:"not null" json:"type"`
	Points      int        `gorm:"not null" json:"points"`
	Description string     `json:"description,omitempty"`
	Reward      string     `json:"reward,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	AddedByID   *uuid.UUID `gorm:"type:uuid" json:"added_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (h *PointsHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice records are append-only: a resend reuses the existing record and
// only regenerates the document.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InvoiceNumber string    `gorm:"uniqueIndex;not null" json:"invoice_number"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	ClientName    string    `json:"client_name"`
	ServiceID     uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	ServiceName   string    `json:"service_name"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Date          time.Time `json:"date"`
	Status        string    `gorm:"default:paid" json:"status"`
	PointsEarned  int       `gorm:"default:0" json:"points_earned"`
	PointsUsed    int       `gorm:"default:0" json:"points_used"`
	Discount      float64   `gorm:"default:0" json:"discount"`
	CreatedAt     time.Time `json:"created_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReminderChannelSMS   = "sms"
	ReminderChannelEmail = "email"

	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderLog records each reminder attempt so the scheduler never sends the
// same appointment reminder twice.
type ReminderLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	ClientID      uuid.UUID `gorm:"type:uuid;not null" json:"client_id"`
	Channel       string    `gorm:"not null" json:"channel"`
	Message       string    `json:"message"`
	Status        string    `gorm:"not null" json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	SentAt        time.Time `json:"sent_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
	AppointmentPaid      AppointmentStatus = "paid"
)

// Appointments are never deleted, only transitioned, so there is no soft
// delete column here.
type Appointment struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	ClientName    string            `json:"client_name"`
	EmployeeID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"employee_id"`
	EmployeeName  string            `json:"employee_name"`
	ServiceID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"service_id"`
	ServiceName   string            `json:"service_name"`
	Date          string            `gorm:"not null;index" json:"date"` // YYYY-MM-DD
	Time          string            `gorm:"not null" json:"time"`       // HH:MM
	Duration      int               `gorm:"not null" json:"duration"`   // minutes
	Status        AppointmentStatus `gorm:"default:pending" json:"status"`
	Notes         string            `json:"notes"`
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AllowedTransitions defines the appointment status state machine.
// paid and cancelled are terminal: once reached, the status never changes.
var AllowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled, AppointmentPaid},
	AppointmentConfirmed: {AppointmentPaid, AppointmentNoShow, AppointmentCancelled},
	AppointmentNoShow:    {AppointmentPaid, AppointmentCancelled},
	AppointmentPaid:      {},
	AppointmentCancelled: {},
}

// IsValidTransition checks whether a status change is allowed. A no-op
// "transition" to the current status is always valid except from cancelled,
// which rejects every update.
func IsValidTransition(from, to AppointmentStatus) bool {
	if from == AppointmentCancelled {
		return false
	}
	if from == to {
		return true
	}
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentPaid || s == AppointmentCancelled
}

// Editable reports whether non-status fields (employee, service, date, time,
// notes) may still be changed.
func (a *Appointment) Editable() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

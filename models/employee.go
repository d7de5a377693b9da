package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleEmployee = "employe"
	RoleAdmin    = "administrateur"
)

const (
	SpecialityNails = "onglerie"
	SpecialityHair  = "coiffure"
	SpecialityBoth  = "les_deux"
)

// TimeSlot is a working interval within a day, as "HH:MM" wall-clock times.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule describes whether an employee works a given weekday and when.
type DaySchedule struct {
	Enabled bool       `json:"enabled"`
	Slots   []TimeSlot `json:"slots"`
}

// WeekSchedule holds one DaySchedule per weekday, indexed by time.Weekday
// (0 = Sunday). A fixed-size array rules out invalid weekday keys.
type WeekSchedule [7]DaySchedule

func (ws WeekSchedule) Value() (driver.Value, error) {
	return json.Marshal(ws)
}

func (ws *WeekSchedule) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ws)
	case string:
		return json.Unmarshal([]byte(v), ws)
	case nil:
		*ws = WeekSchedule{}
		return nil
	default:
		return errors.New("unsupported type for WeekSchedule")
	}
}

// Absence is a date range (inclusive, "YYYY-MM-DD") during which an employee
// is unavailable regardless of their schedule.
type Absence struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

type AbsenceList []Absence

func (a AbsenceList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AbsenceList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	default:
		return errors.New("unsupported type for AbsenceList")
	}
}

type Employee struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FirstName  string         `gorm:"not null" json:"first_name"`
	LastName   string         `gorm:"not null" json:"last_name"`
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Phone      string         `json:"phone"`
	AppRole    string         `gorm:"not null;default:employe" json:"app_role"`
	Speciality string         `gorm:"not null;default:les_deux" json:"speciality"`
	Schedule   WeekSchedule   `gorm:"type:jsonb" json:"schedule"`
	Absences   AbsenceList    `gorm:"type:jsonb" json:"absences"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the employee is an administrator. Administrators
// never take appointments.
func (e *Employee) IsAdmin() bool {
	return e.AppRole == RoleAdmin
}

// FullName is the display name used on appointments and planning views.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// CanPerform reports whether the employee's speciality covers a service
// category ("nails" or "hair").
func (e *Employee) CanPerform(category string) bool {
	switch e.Speciality {
	case SpecialityBoth:
		return true
	case SpecialityNails:
		return category == CategoryNails
	case SpecialityHair:
		return category == CategoryHair
	}
	return false
}

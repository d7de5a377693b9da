package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoyaltyLevel is a named tier unlocked at a minimum points balance,
// granting a percentage discount.
type LoyaltyLevel struct {
	Name      string  `json:"name"`
	MinPoints int     `json:"min_points"`
	Discount  float64 `json:"discount"` // percent
}

// LoyaltyProgram is the salon's loyalty policy, stored as a single JSON
// document on the settings row.
type LoyaltyProgram struct {
	PointsPerEuro  float64        `json:"points_per_euro"`
	ConversionRate float64        `json:"conversion_rate"`
	Levels         []LoyaltyLevel `json:"levels"`
}

func (p LoyaltyProgram) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *LoyaltyProgram) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = LoyaltyProgram{}
		return nil
	default:
		return errors.New("unsupported type for LoyaltyProgram")
	}
}

// EarnRate returns the points-per-euro rate, defaulting to 1 when unset.
func (p LoyaltyProgram) EarnRate() float64 {
	if p.PointsPerEuro <= 0 {
		return 1
	}
	return p.PointsPerEuro
}

// LevelFor returns the highest level whose threshold the balance meets, or
// nil when no level applies. Pure query, no mutation.
func (p LoyaltyProgram) LevelFor(balance int) *LoyaltyLevel {
	levels := make([]LoyaltyLevel, len(p.Levels))
	copy(levels, p.Levels)
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].MinPoints > levels[j].MinPoints
	})
	for i := range levels {
		if levels[i].MinPoints <= balance {
			return &levels[i]
		}
	}
	return nil
}

// Settings is a singleton row holding salon identity, SMTP configuration and
// the loyalty policy.
type Settings struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SalonName    string         `gorm:"not null" json:"salon_name"`
	Address      string         `json:"address"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email"`
	Siret        string         `json:"siret"`
	OpeningHours string         `json:"opening_hours"`
	SMTPHost     string         `json:"smtp_host,omitempty"`
	SMTPPort     string         `json:"smtp_port,omitempty"`
	SMTPUser     string         `json:"smtp_user,omitempty"`
	SMTPPassword string         `json:"-"`
	SMTPFrom     string         `json:"smtp_from,omitempty"`
	Loyalty      LoyaltyProgram `gorm:"type:jsonb" json:"loyalty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

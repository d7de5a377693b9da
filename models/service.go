package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryNails = "nails"
	CategoryHair  = "hair"
)

// TechniquesForCategory lists the techniques offered per service category.
var TechniquesForCategory = map[string][]string{
	CategoryNails: {"gel", "semi-permanent", "natural"},
	CategoryHair:  {"cut", "color", "brushing"},
}

type Service struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Category    string         `gorm:"not null;index" json:"category"`
	Technique   string         `json:"technique"`
	Duration    int            `gorm:"not null" json:"duration"` // minutes
	Price       float64        `gorm:"not null" json:"price"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

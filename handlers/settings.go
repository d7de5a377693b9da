package handlers

import (
	"net/http"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingsHandler struct {
	DB *gorm.DB
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Settings not found"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GetPublicSettings exposes the subset safe for unauthenticated clients.
func (h *SettingsHandler) GetPublicSettings(c *gin.Context) {
	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Settings not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salon_name":    settings.SalonName,
		"address":       settings.Address,
		"phone":         settings.Phone,
		"email":         settings.Email,
		"opening_hours": settings.OpeningHours,
	})
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := h.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Settings not found"})
		return
	}

	var req struct {
		SalonName    *string                `json:"salon_name"`
		Address      *string                `json:"address"`
		Phone        *string                `json:"phone"`
		Email        *string                `json:"email" binding:"omitempty,email"`
		Siret        *string                `json:"siret"`
		OpeningHours *string                `json:"opening_hours"`
		SMTPHost     *string                `json:"smtp_host"`
		SMTPPort     *string                `json:"smtp_port"`
		SMTPUser     *string                `json:"smtp_user"`
		SMTPPassword *string                `json:"smtp_password"`
		SMTPFrom     *string                `json:"smtp_from"`
		Loyalty      *models.LoyaltyProgram `json:"loyalty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.SalonName != nil {
		settings.SalonName = *req.SalonName
	}
	if req.Address != nil {
		settings.Address = *req.Address
	}
	if req.Phone != nil {
		settings.Phone = *req.Phone
	}
	if req.Email != nil {
		settings.Email = *req.Email
	}
	if req.Siret != nil {
		settings.Siret = *req.Siret
	}
	if req.OpeningHours != nil {
		settings.OpeningHours = *req.OpeningHours
	}
	if req.SMTPHost != nil {
		settings.SMTPHost = *req.SMTPHost
	}
	if req.SMTPPort != nil {
		settings.SMTPPort = *req.SMTPPort
	}
	if req.SMTPUser != nil {
		settings.SMTPUser = *req.SMTPUser
	}
	if req.SMTPPassword != nil {
		settings.SMTPPassword = *req.SMTPPassword
	}
	if req.SMTPFrom != nil {
		settings.SMTPFrom = *req.SMTPFrom
	}
	if req.Loyalty != nil {
		if req.Loyalty.PointsPerEuro < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "points_per_euro cannot be negative"})
			return
		}
		settings.Loyalty = *req.Loyalty
	}

	if err := h.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

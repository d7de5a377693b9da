package handlers

import (
	"errors"
	"net/http"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoyaltyHandler struct {
	DB *gorm.DB
}

func (h *LoyaltyHandler) MyPoints(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var client models.Client
	if err := h.DB.Where("id = ?", userID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var settings models.Settings
	h.DB.First(&settings)

	response := gin.H{"points": client.Points}
	if level := settings.Loyalty.LevelFor(client.Points); level != nil {
		response["level"] = level
	}

	c.JSON(http.StatusOK, response)
}

func (h *LoyaltyHandler) MyHistory(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var history []models.PointsHistory
	if err := h.DB.Where("client_id = ?", userID).Order("created_at DESC").Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch points history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

// Redeem spends points against a reward. The balance can never go negative:
// an insufficient balance rejects the request and leaves both the balance and
// the ledger untouched.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Points int    `json:"points" binding:"required,gt=0"`
		Reward string `json:"reward" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var remaining int
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("id = ?", userID).First(&client).Error; err != nil {
			return err
		}

		if client.Points < req.Points {
			return models.ErrInsufficientPoints
		}

		if err := tx.Model(&client).Update("points", gorm.Expr("points - ?", req.Points)).Error; err != nil {
			return err
		}

		history := models.PointsHistory{
			ClientID: client.ID,
			Type:     models.PointsRedeem,
			Points:   -req.Points,
			Reward:   req.Reward,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		remaining = client.Points - req.Points
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientPoints) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient points"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Points redeemed successfully",
		"remainingPoints": remaining,
	})
}

// AddPoints is the staff-only manual adjustment. Only positive amounts are
// accepted; removals go through redeem.
func (h *LoyaltyHandler) AddPoints(c *gin.Context) {
	staffID, _ := c.Get("user_id")

	var req struct {
		ClientID uuid.UUID `json:"client_id" binding:"required"`
		Points   int       `json:"points" binding:"required,gt=0"`
		Reason   string    `json:"reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var newTotal int
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("id = ?", req.ClientID).First(&client).Error; err != nil {
			return err
		}

		if err := tx.Model(&client).Update("points", gorm.Expr("points + ?", req.Points)).Error; err != nil {
			return err
		}

		addedBy, _ := staffID.(uuid.UUID)
		history := models.PointsHistory{
			ClientID:  client.ID,
			Type:      models.PointsAdded,
			Points:    req.Points,
			Reason:    req.Reason,
			AddedByID: &addedBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		newTotal = client.Points + req.Points
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Points added successfully",
		"newTotal": newTotal,
	})
}

// ClientHistory lets staff consult any client's ledger.
func (h *LoyaltyHandler) ClientHistory(c *gin.Context) {
	clientID := c.Param("id")

	var client models.Client
	if err := h.DB.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var history []models.PointsHistory
	if err := h.DB.Where("client_id = ?", client.ID).Order("created_at DESC").Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch points history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points":  client.Points,
		"history": history,
	})
}

func (h *LoyaltyHandler) Levels(c *gin.Context) {
	var settings models.Settings
	h.DB.First(&settings)

	c.JSON(http.StatusOK, gin.H{
		"points_per_euro": settings.Loyalty.EarnRate(),
		"levels":          settings.Loyalty.Levels,
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"ferneynails-backend/firebase"
	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ServiceHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

func (h *ServiceHandler) ListServices(c *gin.Context) {
	query := h.DB.Model(&models.Service{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if technique := c.Query("technique"); technique != "" {
		query = query.Where("technique = ?", technique)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", v)
		}
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", v)
		}
	}
	if minDuration := c.Query("min_duration"); minDuration != "" {
		if v, err := strconv.Atoi(minDuration); err == nil {
			query = query.Where("duration >= ?", v)
		}
	}
	if maxDuration := c.Query("max_duration"); maxDuration != "" {
		if v, err := strconv.Atoi(maxDuration); err == nil {
			query = query.Where("duration <= ?", v)
		}
	}

	var services []models.Service
	if err := query.Order("category ASC, name ASC").Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetTechniques returns the technique names offered for a category.
func (h *ServiceHandler) GetTechniques(c *gin.Context) {
	category := c.Param("category")

	techniques, ok := models.TechniquesForCategory[category]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category, "techniques": techniques})
}

func (h *ServiceHandler) GetService(c *gin.Context) {
	id := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ?", id).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Category    string  `json:"category" binding:"required,oneof=nails hair"`
		Technique   string  `json:"technique"`
		Duration    int     `json:"duration" binding:"required,gte=15"`
		Price       float64 `json:"price" binding:"gte=0"`
		Description string  `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	service := models.Service{
		Name:        req.Name,
		Category:    req.Category,
		Technique:   req.Technique,
		Duration:    req.Duration,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
	}

	if err := h.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ?", id).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Category    *string  `json:"category" binding:"omitempty,oneof=nails hair"`
		Technique   *string  `json:"technique"`
		Duration    *int     `json:"duration" binding:"omitempty,gte=15"`
		Price       *float64 `json:"price" binding:"omitempty,gte=0"`
		Description *string  `json:"description"`
		IsActive    *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Category != nil {
		service.Category = *req.Category
	}
	if req.Technique != nil {
		service.Technique = *req.Technique
	}
	if req.Duration != nil {
		service.Duration = *req.Duration
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.IsActive != nil {
		if err := h.DB.Model(&service).Update("is_active", *req.IsActive).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
			return
		}
		service.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ?", id).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	if err := h.DB.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

func (h *ServiceHandler) UploadServiceImage(c *gin.Context) {
	id := c.Param("id")

	var service models.Service
	if err := h.DB.Where("id = ?", id).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.Storage.UploadServiceImage(file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	if err := h.DB.Model(&service).Update("image_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image URL"})
		return
	}

	service.ImageURL = url
	c.JSON(http.StatusOK, service)
}

package handlers

import (
	"net/http"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	DB *gorm.DB
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	query := h.DB.Model(&models.Invoice{})

	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) MyInvoices(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var invoices []models.Invoice
	if err := h.DB.Where("client_id = ?", userID).Order("created_at DESC").Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	if err := h.DB.Where("id = ?", id).First(&invoice).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ResendInvoice regenerates the document for an existing invoice and emails
// it again. No new invoice record is created and the number never changes, so
// resending is idempotent.
func (h *InvoiceHandler) ResendInvoice(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	if err := h.DB.Where("id = ?", id).First(&invoice).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}

	var appointment models.Appointment
	if err := h.DB.Where("id = ?", invoice.AppointmentID).First(&appointment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	var service models.Service
	if err := h.DB.Where("id = ?", invoice.ServiceID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var client models.Client
	if err := h.DB.Where("id = ?", invoice.ClientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var settings models.Settings
	h.DB.First(&settings)

	config := utils.GetEmailConfig()
	config.Merge(utils.EmailConfig{
		Host:     settings.SMTPHost,
		Port:     settings.SMTPPort,
		Username: settings.SMTPUser,
		Password: settings.SMTPPassword,
		From:     settings.SMTPFrom,
	})

	html := utils.BuildInvoiceHTML(&settings, &invoice)
	subject := "Your invoice " + invoice.InvoiceNumber + " - " + settings.SalonName
	if err := utils.SendEmailWithConfig(config, client.Email, subject, html); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send invoice email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Invoice sent successfully",
		"invoice_number": invoice.InvoiceNumber,
	})
}

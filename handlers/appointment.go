package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
	DB *gorm.DB
}

// newInvoiceNumber is replaced in tests.
var newInvoiceNumber = utils.GenerateInvoiceNumber

func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	query := h.DB.Model(&models.Appointment{})

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if employeeID := c.Query("employee_id"); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	id := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Where("id = ?", id).First(&appointment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	c.JSON(http.StatusOK, appointment)
}

type createAppointmentRequest struct {
	ClientID   uuid.UUID `json:"client_id" binding:"required"`
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
	ServiceID  uuid.UUID `json:"service_id" binding:"required"`
	Date       string    `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string    `json:"time" binding:"required"`
	Notes      string    `json:"notes"`
}

// createAppointment builds and persists an appointment after enforcing the
// availability check. Shared by the staff and client creation paths.
func (h *AppointmentHandler) createAppointment(c *gin.Context, req createAppointmentRequest) {
	var client models.Client
	if err := h.DB.Where("id = ?", req.ClientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var employee models.Employee
	if err := h.DB.Where("id = ?", req.EmployeeID).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	if employee.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	var service models.Service
	if err := h.DB.Where("id = ?", req.ServiceID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	if !employee.CanPerform(service.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Employee does not perform this type of service"})
		return
	}

	var existing []models.Appointment
	if err := h.DB.Where("employee_id = ? AND date = ?", employee.ID, req.Date).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	result, err := models.CheckAvailability(&employee, existing, req.Date, req.Time, service.Duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !result.Available {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Reason})
		return
	}

	appointment := models.Appointment{
		ClientID:     client.ID,
		ClientName:   client.FullName(),
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName(),
		ServiceID:    service.ID,
		ServiceName:  service.Name,
		Date:         req.Date,
		Time:         req.Time,
		Duration:     service.Duration,
		Status:       models.AppointmentPending,
		Notes:        req.Notes,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
		return
	}

	utils.SendAppointmentConfirmation(client.Email, client.FirstName, service.Name, req.Date, req.Time)

	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	h.createAppointment(c, req)
}

// CreateMyAppointment is the client booking path: the client id always comes
// from the token, never from the body.
func (h *AppointmentHandler) CreateMyAppointment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
		ServiceID  uuid.UUID `json:"service_id" binding:"required"`
		Date       string    `json:"date" binding:"required,datetime=2006-01-02"`
		Time       string    `json:"time" binding:"required"`
		Notes      string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	h.createAppointment(c, createAppointmentRequest{
		ClientID:   userID.(uuid.UUID),
		EmployeeID: req.EmployeeID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
}

func (h *AppointmentHandler) MyAppointments(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Where("client_id = ?", userID).Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// CancelMyAppointment lets a client cancel their own appointment. Terminal
// statuses cannot be cancelled.
func (h *AppointmentHandler) CancelMyAppointment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Where("id = ? AND client_id = ?", id, userID).First(&appointment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	if !models.IsValidTransition(appointment.Status, models.AppointmentCancelled) {
		msg := "Cannot modify a cancelled appointment"
		if appointment.Status == models.AppointmentPaid {
			msg = "Cannot cancel a paid appointment"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	appointment.Status = models.AppointmentCancelled
	if err := h.DB.Save(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel appointment"})
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment applies status transitions through the state machine and
// field edits while the appointment is still editable. The paid transition
// runs its side effects in a single transaction.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Where("id = ?", id).First(&appointment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	var req struct {
		Status     *models.AppointmentStatus `json:"status" binding:"omitempty,oneof=pending confirmed cancelled no_show paid"`
		EmployeeID *uuid.UUID                `json:"employee_id"`
		ServiceID  *uuid.UUID                `json:"service_id"`
		Date       *string                   `json:"date" binding:"omitempty,datetime=2006-01-02"`
		Time       *string                   `json:"time"`
		Notes      *string                   `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if appointment.Status == models.AppointmentCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify a cancelled appointment"})
		return
	}

	if req.Status != nil && *req.Status != appointment.Status {
		if appointment.Status == models.AppointmentPaid && *req.Status == models.AppointmentPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot revert a paid appointment to pending"})
			return
		}
		if !models.IsValidTransition(appointment.Status, *req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid status transition from %s to %s", appointment.Status, *req.Status),
			})
			return
		}
	}

	hasFieldEdits := req.EmployeeID != nil || req.ServiceID != nil || req.Date != nil || req.Time != nil || req.Notes != nil
	if hasFieldEdits && !appointment.Editable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Appointment details can only be changed while pending or confirmed"})
		return
	}

	if req.EmployeeID != nil {
		var employee models.Employee
		if err := h.DB.Where("id = ?", req.EmployeeID).First(&employee).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return
		}
		appointment.EmployeeID = employee.ID
		appointment.EmployeeName = employee.FullName()
	}
	if req.ServiceID != nil {
		var service models.Service
		if err := h.DB.Where("id = ?", req.ServiceID).First(&service).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}
		appointment.ServiceID = service.ID
		appointment.ServiceName = service.Name
		appointment.Duration = service.Duration
	}
	if req.Date != nil {
		appointment.Date = *req.Date
	}
	if req.Time != nil {
		if _, err := models.ParseMinutes(*req.Time); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		appointment.Time = *req.Time
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if req.Status != nil && *req.Status == models.AppointmentPaid && appointment.Status != models.AppointmentPaid {
		h.markPaid(c, &appointment)
		return
	}

	if req.Status != nil {
		appointment.Status = *req.Status
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// markPaid runs the paid transition: loyalty accrual, ledger entry, invoice
// creation and the status change, all inside one transaction. If the service
// or the client cannot be loaded the whole update is rejected and nothing is
// persisted. The invoice email goes out after commit, best-effort.
func (h *AppointmentHandler) markPaid(c *gin.Context, appointment *models.Appointment) {
	var settings models.Settings
	h.DB.First(&settings)

	var invoice models.Invoice
	var clientEmail string

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.Where("id = ?", appointment.ServiceID).First(&service).Error; err != nil {
			return fmt.Errorf("service lookup: %w", err)
		}

		var client models.Client
		if err := tx.Where("id = ?", appointment.ClientID).First(&client).Error; err != nil {
			return fmt.Errorf("client lookup: %w", err)
		}
		clientEmail = client.Email

		// The ledger entry is appended even for a free service, so every paid
		// appointment leaves a trace in the history.
		earned := int(math.Floor(service.Price * settings.Loyalty.EarnRate()))
		if err := tx.Model(&client).Update("points", gorm.Expr("points + ?", earned)).Error; err != nil {
			return err
		}
		history := models.PointsHistory{
			ClientID:    client.ID,
			Type:        models.PointsEarned,
			Points:      earned,
			Description: service.Name,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		invoice = models.Invoice{
			AppointmentID: appointment.ID,
			ClientID:      client.ID,
			ClientName:    client.FullName(),
			ServiceID:     service.ID,
			ServiceName:   service.Name,
			Amount:        service.Price,
			Date:          time.Now(),
			Status:        "paid",
			PointsEarned:  earned,
		}

		// Random suffixes can collide within a month; retry under the unique
		// index a few times before giving up. Each attempt runs from a
		// savepoint because a unique violation aborts the surrounding
		// transaction on Postgres.
		var createErr error
		for attempt := 0; attempt < 5; attempt++ {
			invoice.InvoiceNumber = newInvoiceNumber()
			if err := tx.SavePoint("invoice_insert").Error; err != nil {
				return err
			}
			createErr = tx.Create(&invoice).Error
			if createErr == nil {
				break
			}
			if err := tx.RollbackTo("invoice_insert").Error; err != nil {
				return err
			}
			invoice.ID = uuid.Nil
		}
		if createErr != nil {
			return createErr
		}

		appointment.Status = models.AppointmentPaid
		appointment.InvoiceNumber = invoice.InvoiceNumber
		return tx.Save(appointment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete payment"})
		return
	}

	config := utils.GetEmailConfig()
	config.Merge(utils.EmailConfig{
		Host:     settings.SMTPHost,
		Port:     settings.SMTPPort,
		Username: settings.SMTPUser,
		Password: settings.SMTPPassword,
		From:     settings.SMTPFrom,
	})
	html := utils.BuildInvoiceHTML(&settings, &invoice)
	utils.SendInvoiceEmail(config, clientEmail, invoice.InvoiceNumber, html)

	c.JSON(http.StatusOK, gin.H{
		"appointment": appointment,
		"invoice":     invoice,
	})
}

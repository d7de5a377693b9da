package handlers

import (
	"net/http"
	"strconv"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type EmployeeHandler struct {
	DB *gorm.DB
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	query := h.DB.Model(&models.Employee{}).Where("app_role = ?", models.RoleEmployee)

	if speciality := c.Query("speciality"); speciality != "" {
		query = query.Where("speciality = ? OR speciality = ?", speciality, models.SpecialityBoth)
	}

	var employees []models.Employee
	if err := query.Order("last_name ASC").Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees"})
		return
	}

	c.JSON(http.StatusOK, employees)
}

// ListBySpeciality is the public variant used by the booking flow. Employees
// with speciality les_deux match both categories.
func (h *EmployeeHandler) ListBySpeciality(c *gin.Context) {
	speciality := c.Param("speciality")

	switch speciality {
	case models.SpecialityNails, models.SpecialityHair, models.SpecialityBoth:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown speciality"})
		return
	}

	var employees []models.Employee
	err := h.DB.
		Where("app_role = ?", models.RoleEmployee).
		Where("speciality = ? OR speciality = ?", speciality, models.SpecialityBoth).
		Order("last_name ASC").
		Find(&employees).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees"})
		return
	}

	type publicEmployee struct {
		ID         string `json:"id"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Speciality string `json:"speciality"`
	}
	result := make([]publicEmployee, 0, len(employees))
	for _, e := range employees {
		result = append(result, publicEmployee{
			ID:         e.ID.String(),
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Speciality: e.Speciality,
		})
	}

	c.JSON(http.StatusOK, result)
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id := c.Param("id")

	var employee models.Employee
	if err := h.DB.Where("id = ?", id).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req struct {
		FirstName  string               `json:"first_name" binding:"required"`
		LastName   string               `json:"last_name" binding:"required"`
		Email      string               `json:"email" binding:"required,email"`
		Password   string               `json:"password"`
		Phone      string               `json:"phone"`
		AppRole    string               `json:"app_role" binding:"omitempty,oneof=employe administrateur"`
		Speciality string               `json:"speciality" binding:"omitempty,oneof=onglerie coiffure les_deux"`
		Schedule   *models.WeekSchedule `json:"schedule"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var existing models.Employee
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An employee with this email already exists"})
		return
	}

	password := req.Password
	if password == "" {
		password = "ferney2024"
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	employee := models.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   string(hashedPassword),
		Phone:      req.Phone,
		AppRole:    req.AppRole,
		Speciality: req.Speciality,
	}
	if employee.AppRole == "" {
		employee.AppRole = models.RoleEmployee
	}
	if employee.Speciality == "" {
		employee.Speciality = models.SpecialityBoth
	}
	if req.Schedule != nil {
		employee.Schedule = *req.Schedule
	}

	if err := h.DB.Create(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create employee"})
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id := c.Param("id")

	var employee models.Employee
	if err := h.DB.Where("id = ?", id).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	var req struct {
		FirstName  *string              `json:"first_name"`
		LastName   *string              `json:"last_name"`
		Email      *string              `json:"email"`
		Phone      *string              `json:"phone"`
		Speciality *string              `json:"speciality" binding:"omitempty,oneof=onglerie coiffure les_deux"`
		Schedule   *models.WeekSchedule `json:"schedule"`
		Absences   *models.AbsenceList  `json:"absences"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Email != nil && *req.Email != employee.Email {
		var existing models.Employee
		if err := h.DB.Where("email = ? AND id <> ?", *req.Email, employee.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "An employee with this email already exists"})
			return
		}
		employee.Email = *req.Email
	}

	if req.FirstName != nil {
		employee.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		employee.LastName = *req.LastName
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Speciality != nil {
		employee.Speciality = *req.Speciality
	}
	if req.Schedule != nil {
		employee.Schedule = *req.Schedule
	}
	if req.Absences != nil {
		employee.Absences = *req.Absences
	}

	if err := h.DB.Save(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update employee"})
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id := c.Param("id")

	var employee models.Employee
	if err := h.DB.Where("id = ?", id).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	if employee.IsAdmin() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete an administrator account"})
		return
	}

	if err := h.DB.Delete(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete employee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}

// CheckAvailability answers whether an employee can take a booking at
// date+time. Admin accounts never take appointments, so they are treated the
// same as a missing employee.
func (h *EmployeeHandler) CheckAvailability(c *gin.Context) {
	id := c.Param("id")
	date := c.Query("date")
	timeOfDay := c.Query("time")

	if date == "" || timeOfDay == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time query parameters are required"})
		return
	}

	var employee models.Employee
	if err := h.DB.Where("id = ?", id).First(&employee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}
	if employee.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
		return
	}

	duration := models.DefaultProbeDuration
	if d := c.Query("duration"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive number of minutes"})
			return
		}
		duration = parsed
	} else if serviceID := c.Query("service_id"); serviceID != "" {
		var service models.Service
		if err := h.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}
		duration = service.Duration
	}

	var appointments []models.Appointment
	if err := h.DB.Where("employee_id = ? AND date = ?", employee.ID, date).Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	result, err := models.CheckAvailability(&employee, appointments, date, timeOfDay, duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"net/http"
	"time"

	"ferneynails-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsHandler struct {
	DB *gorm.DB
}

// Dashboard aggregates the figures the staff landing page shows.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	now := time.Now()
	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var clientCount int64
	h.DB.Model(&models.Client{}).Count(&clientCount)

	var todayAppointments int64
	h.DB.Model(&models.Appointment{}).
		Where("date = ? AND status <> ?", today, models.AppointmentCancelled).
		Count(&todayAppointments)

	var monthRevenue float64
	h.DB.Model(&models.Invoice{}).
		Where("created_at >= ?", monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&monthRevenue)

	var prevMonthRevenue float64
	h.DB.Model(&models.Invoice{}).
		Where("created_at >= ? AND created_at < ?", prevMonthStart, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&prevMonthRevenue)

	growth := 0.0
	if prevMonthRevenue > 0 {
		growth = (monthRevenue - prevMonthRevenue) / prevMonthRevenue * 100
	}

	// Revenue per month over the last six months, oldest first.
	type monthRevenueEntry struct {
		Month   string  `json:"month"`
		Revenue float64 `json:"revenue"`
	}
	series := make([]monthRevenueEntry, 0, 6)
	for i := 5; i >= 0; i-- {
		start := monthStart.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		var revenue float64
		h.DB.Model(&models.Invoice{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&revenue)
		series = append(series, monthRevenueEntry{
			Month:   start.Format("2006-01"),
			Revenue: revenue,
		})
	}

	type popularService struct {
		ServiceName string `json:"service_name"`
		Count       int64  `json:"count"`
	}
	var popular []popularService
	h.DB.Model(&models.Appointment{}).
		Select("service_name, COUNT(*) as count").
		Where("status <> ?", models.AppointmentCancelled).
		Group("service_name").
		Order("count DESC").
		Limit(5).
		Scan(&popular)

	var upcoming []models.Appointment
	h.DB.Where("date >= ? AND status IN ?", today,
		[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed}).
		Order("date ASC, time ASC").
		Limit(10).
		Find(&upcoming)

	c.JSON(http.StatusOK, gin.H{
		"clients":               clientCount,
		"today_appointments":    todayAppointments,
		"month_revenue":         monthRevenue,
		"month_revenue_growth":  growth,
		"revenue_by_month":      series,
		"popular_services":      popular,
		"upcoming_appointments": upcoming,
	})
}

package routes

import (
	"net/http"
	"time"

	"ferneynails-backend/firebase"
	"ferneynails-backend/handlers"
	"ferneynails-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	clientHandler := &handlers.ClientHandler{DB: db}
	employeeHandler := &handlers.EmployeeHandler{DB: db}
	serviceHandler := &handlers.ServiceHandler{DB: db, Storage: storage}
	appointmentHandler := &handlers.AppointmentHandler{DB: db}
	loyaltyHandler := &handlers.LoyaltyHandler{DB: db}
	invoiceHandler := &handlers.InvoiceHandler{DB: db}
	statsHandler := &handlers.StatsHandler{DB: db}
	settingsHandler := &handlers.SettingsHandler{DB: db}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Brute-force protection on the login/register endpoints.
	authLimiter := middleware.NewRateLimiter(10, 1*time.Minute)

	api := r.Group("/api")

	// Public routes
	{
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		auth.POST("/register", authHandler.RegisterClient)
		auth.POST("/login", authHandler.LoginClient)
		auth.POST("/staff/login", authHandler.LoginStaff)

		api.GET("/services", serviceHandler.ListServices)
		api.GET("/services/:id", serviceHandler.GetService)
		api.GET("/services/techniques/:category", serviceHandler.GetTechniques)
		api.GET("/employees/by-speciality/:speciality", employeeHandler.ListBySpeciality)
		api.GET("/settings/public", settingsHandler.GetPublicSettings)
	}

	// Authenticated routes (any valid token)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateProfile)
		protected.PUT("/me/password", authHandler.ChangePassword)
	}

	// Client-only routes
	client := api.Group("")
	client.Use(middleware.AuthMiddleware())
	client.Use(middleware.ClientMiddleware())
	{
		client.GET("/my/appointments", appointmentHandler.MyAppointments)
		client.POST("/my/appointments", appointmentHandler.CreateMyAppointment)
		client.POST("/my/appointments/:id/cancel", appointmentHandler.CancelMyAppointment)
		client.GET("/my/invoices", invoiceHandler.MyInvoices)

		client.GET("/loyalty/points", loyaltyHandler.MyPoints)
		client.GET("/loyalty/history", loyaltyHandler.MyHistory)
		client.POST("/loyalty/redeem", loyaltyHandler.Redeem)
		client.GET("/loyalty/levels", loyaltyHandler.Levels)
	}

	// Staff routes (employe or administrateur)
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	{
		staff.GET("/clients", clientHandler.ListClients)
		staff.GET("/clients/:id", clientHandler.GetClient)
		staff.POST("/clients", clientHandler.CreateClient)
		staff.PUT("/clients/:id", clientHandler.UpdateClient)
		staff.GET("/clients/:id/loyalty", loyaltyHandler.ClientHistory)

		staff.GET("/employees", employeeHandler.ListEmployees)
		staff.GET("/employees/:id", employeeHandler.GetEmployee)
		staff.GET("/employees/:id/availability", employeeHandler.CheckAvailability)

		staff.GET("/appointments", appointmentHandler.ListAppointments)
		staff.GET("/appointments/:id", appointmentHandler.GetAppointment)
		staff.POST("/appointments", appointmentHandler.CreateAppointment)
		staff.PUT("/appointments/:id", appointmentHandler.UpdateAppointment)

		staff.POST("/loyalty/add", loyaltyHandler.AddPoints)

		staff.GET("/invoices", invoiceHandler.ListInvoices)
		staff.GET("/invoices/:id", invoiceHandler.GetInvoice)
		staff.POST("/invoices/:id/resend", invoiceHandler.ResendInvoice)

		staff.GET("/stats", statsHandler.Dashboard)
		staff.GET("/settings", settingsHandler.GetSettings)
	}

	// Admin-only routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/employees", employeeHandler.CreateEmployee)
		admin.PUT("/employees/:id", employeeHandler.UpdateEmployee)
		admin.DELETE("/employees/:id", employeeHandler.DeleteEmployee)

		admin.DELETE("/clients/:id", clientHandler.DeleteClient)

		admin.POST("/services", serviceHandler.CreateService)
		admin.PUT("/services/:id", serviceHandler.UpdateService)
		admin.DELETE("/services/:id", serviceHandler.DeleteService)
		admin.POST("/services/:id/image", serviceHandler.UploadServiceImage)

		admin.PUT("/settings", settingsHandler.UpdateSettings)
	}
}

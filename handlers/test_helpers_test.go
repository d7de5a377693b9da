package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"ferneynails-backend/middleware"
	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
	// Make sure no ambient SMTP config leaks into email-sending paths.
	os.Unsetenv("SMTP_HOST")
	os.Unsetenv("SMTP_PORT")
	os.Unsetenv("SMTP_FROM")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases. This ensures all goroutines share the same
	// connection and see the same tables.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM reminder_logs")
	testDB.Exec("DELETE FROM points_histories")
	testDB.Exec("DELETE FROM invoices")
	testDB.Exec("DELETE FROM appointments")
	testDB.Exec("DELETE FROM services")
	testDB.Exec("DELETE FROM employees")
	testDB.Exec("DELETE FROM clients")
	testDB.Exec("DELETE FROM settings")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL.
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "clients" (
			"id" TEXT PRIMARY KEY,
			"first_name" TEXT NOT NULL,
			"last_name" TEXT NOT NULL,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"phone" TEXT,
			"address" TEXT,
			"points" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_deleted_at ON "clients"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "employees" (
			"id" TEXT PRIMARY KEY,
			"first_name" TEXT NOT NULL,
			"last_name" TEXT NOT NULL,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"phone" TEXT,
			"app_role" TEXT DEFAULT 'employe',
			"speciality" TEXT DEFAULT 'les_deux',
			"schedule" TEXT,
			"absences" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_deleted_at ON "employees"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "services" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"category" TEXT NOT NULL,
			"technique" TEXT,
			"duration" INTEGER NOT NULL,
			"price" REAL NOT NULL,
			"description" TEXT,
			"image_url" TEXT,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_services_deleted_at ON "services"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_services_category ON "services"("category")`,

		`CREATE TABLE IF NOT EXISTS "appointments" (
			"id" TEXT PRIMARY KEY,
			"client_id" TEXT NOT NULL,
			"client_name" TEXT,
			"employee_id" TEXT NOT NULL,
			"employee_name" TEXT,
			"service_id" TEXT NOT NULL,
			"service_name" TEXT,
			"date" TEXT NOT NULL,
			"time" TEXT NOT NULL,
			"duration" INTEGER NOT NULL,
			"status" TEXT DEFAULT 'pending',
			"notes" TEXT,
			"invoice_number" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client_id ON "appointments"("client_id")`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_employee_id ON "appointments"("employee_id")`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON "appointments"("date")`,

		`CREATE TABLE IF NOT EXISTS "invoices" (
			"id" TEXT PRIMARY KEY,
			"invoice_number" TEXT NOT NULL,
			"appointment_id" TEXT NOT NULL,
			"client_id" TEXT NOT NULL,
			"client_name" TEXT,
			"service_id" TEXT NOT NULL,
			"service_name" TEXT,
			"amount" REAL NOT NULL,
			"date" DATETIME,
			"status" TEXT DEFAULT 'paid',
			"points_earned" INTEGER DEFAULT 0,
			"points_used" INTEGER DEFAULT 0,
			"discount" REAL DEFAULT 0,
			"created_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_invoice_number ON "invoices"("invoice_number")`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON "invoices"("client_id")`,

		`CREATE TABLE IF NOT EXISTS "points_histories" (
			"id" TEXT PRIMARY KEY,
			"client_id" TEXT NOT NULL,
			"type" TEXT NOT NULL,
			"points" INTEGER NOT NULL,
			"description" TEXT,
			"reward" TEXT,
			"reason" TEXT,
			"added_by_id" TEXT,
			"created_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_histories_client_id ON "points_histories"("client_id")`,

		`CREATE TABLE IF NOT EXISTS "settings" (
			"id" TEXT PRIMARY KEY,
			"salon_name" TEXT NOT NULL,
			"address" TEXT,
			"phone" TEXT,
			"email" TEXT,
			"siret" TEXT,
			"opening_hours" TEXT,
			"smtp_host" TEXT,
			"smtp_port" TEXT,
			"smtp_user" TEXT,
			"smtp_password" TEXT,
			"smtp_from" TEXT,
			"loyalty" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS "reminder_logs" (
			"id" TEXT PRIMARY KEY,
			"appointment_id" TEXT NOT NULL,
			"client_id" TEXT NOT NULL,
			"channel" TEXT NOT NULL,
			"message" TEXT,
			"status" TEXT NOT NULL,
			"error_message" TEXT,
			"sent_at" DATETIME,
			"created_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminder_logs_appointment_id ON "reminder_logs"("appointment_id")`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// ==================== Seed Helpers ====================

// seedClient creates a client with password "password123" and returns it
// along with a valid JWT token.
func seedClient(db *gorm.DB, email string) (models.Client, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	client := models.Client{
		ID:        uuid.New(),
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     email,
		Password:  string(hashed),
		Phone:     "0612345678",
	}
	db.Create(&client)

	token, _ := utils.GenerateToken(client.ID, client.Email, "client")
	return client, token
}

// seedEmployee creates a working employee with a Monday-to-Friday schedule of
// 09:00-12:00 and 14:00-19:00, and returns it with a staff token.
func seedEmployee(db *gorm.DB, email, speciality string) (models.Employee, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	var schedule models.WeekSchedule
	for day := 1; day <= 5; day++ {
		schedule[day] = models.DaySchedule{
			Enabled: true,
			Slots: []models.TimeSlot{
				{Start: "09:00", End: "12:00"},
				{Start: "14:00", End: "19:00"},
			},
		}
	}

	employee := models.Employee{
		ID:         uuid.New(),
		FirstName:  "Sophie",
		LastName:   "Martin",
		Email:      email,
		Password:   string(hashed),
		AppRole:    models.RoleEmployee,
		Speciality: speciality,
		Schedule:   schedule,
	}
	db.Create(&employee)

	token, _ := utils.GenerateToken(employee.ID, employee.Email, employee.AppRole)
	return employee, token
}

// seedAdmin creates an administrator account and returns it with a token.
func seedAdmin(db *gorm.DB, email string) (models.Employee, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	admin := models.Employee{
		ID:         uuid.New(),
		FirstName:  "Admin",
		LastName:   "Ferney",
		Email:      email,
		Password:   string(hashed),
		AppRole:    models.RoleAdmin,
		Speciality: models.SpecialityBoth,
	}
	db.Create(&admin)

	token, _ := utils.GenerateToken(admin.ID, admin.Email, admin.AppRole)
	return admin, token
}

// seedService creates an active service.
func seedService(db *gorm.DB, name, category string, duration int, price float64) models.Service {
	service := models.Service{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Duration: duration,
		Price:    price,
		IsActive: true,
	}
	db.Create(&service)
	return service
}

// seedAppointment creates an appointment in the given status.
func seedAppointment(db *gorm.DB, client models.Client, employee models.Employee, service models.Service, date, timeOfDay string, status models.AppointmentStatus) models.Appointment {
	apt := models.Appointment{
		ID:           uuid.New(),
		ClientID:     client.ID,
		ClientName:   client.FullName(),
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName(),
		ServiceID:    service.ID,
		ServiceName:  service.Name,
		Date:         date,
		Time:         timeOfDay,
		Duration:     service.Duration,
		Status:       status,
	}
	db.Create(&apt)
	// GORM may skip the zero-value status, so force it.
	db.Model(&apt).Update("status", status)
	return apt
}

// seedSettings creates the singleton settings row with a 1 point per euro
// loyalty program and three levels.
func seedSettings(db *gorm.DB) models.Settings {
	settings := models.Settings{
		ID:        uuid.New(),
		SalonName: "Ferney Nails",
		Address:   "Ferney-Voltaire, France",
		Phone:     "0450000000",
		Email:     "contact@ferneynails.fr",
		Loyalty: models.LoyaltyProgram{
			PointsPerEuro:  1,
			ConversionRate: 0.1,
			Levels: []models.LoyaltyLevel{
				{Name: "Bronze", MinPoints: 0, Discount: 0},
				{Name: "Silver", MinPoints: 200, Discount: 5},
				{Name: "Gold", MinPoints: 500, Discount: 10},
			},
		},
	}
	db.Create(&settings)
	return settings
}

// seedInvoice creates an invoice tied to an appointment.
func seedInvoice(db *gorm.DB, apt models.Appointment, number string, amount float64) models.Invoice {
	inv := models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		AppointmentID: apt.ID,
		ClientID:      apt.ClientID,
		ClientName:    apt.ClientName,
		ServiceID:     apt.ServiceID,
		ServiceName:   apt.ServiceName,
		Amount:        amount,
		Status:        "paid",
	}
	db.Create(&inv)
	return inv
}

// ==================== Router Setup Helpers ====================

// setupAuthRouter sets up routes for auth handler tests.
func setupAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	authHandler := &AuthHandler{DB: db}

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.RegisterClient)
	api.POST("/auth/login", authHandler.LoginClient)
	api.POST("/auth/staff/login", authHandler.LoginStaff)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/me", authHandler.Me)
	protected.PUT("/me", authHandler.UpdateProfile)
	protected.PUT("/me/password", authHandler.ChangePassword)

	return r
}

// setupClientRouter sets up routes for client handler tests.
func setupClientRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	clientHandler := &ClientHandler{DB: db}

	api := r.Group("/api")
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/clients", clientHandler.ListClients)
	staff.GET("/clients/:id", clientHandler.GetClient)
	staff.POST("/clients", clientHandler.CreateClient)
	staff.PUT("/clients/:id", clientHandler.UpdateClient)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.DELETE("/clients/:id", clientHandler.DeleteClient)

	return r
}

// setupEmployeeRouter sets up routes for employee handler tests.
func setupEmployeeRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	employeeHandler := &EmployeeHandler{DB: db}

	api := r.Group("/api")
	api.GET("/employees/by-speciality/:speciality", employeeHandler.ListBySpeciality)

	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/employees", employeeHandler.ListEmployees)
	staff.GET("/employees/:id", employeeHandler.GetEmployee)
	staff.GET("/employees/:id/availability", employeeHandler.CheckAvailability)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/employees", employeeHandler.CreateEmployee)
	admin.PUT("/employees/:id", employeeHandler.UpdateEmployee)
	admin.DELETE("/employees/:id", employeeHandler.DeleteEmployee)

	return r
}

// setupServiceRouter sets up routes for service handler tests and returns the
// mock storage so tests can assert on uploads.
func setupServiceRouter(db *gorm.DB) (*gin.Engine, *mockStorage) {
	r := gin.New()
	storage := newMockStorage()
	serviceHandler := &ServiceHandler{DB: db, Storage: storage}

	api := r.Group("/api")
	api.GET("/services", serviceHandler.ListServices)
	api.GET("/services/:id", serviceHandler.GetService)
	api.GET("/services/techniques/:category", serviceHandler.GetTechniques)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/services", serviceHandler.CreateService)
	admin.PUT("/services/:id", serviceHandler.UpdateService)
	admin.DELETE("/services/:id", serviceHandler.DeleteService)
	admin.POST("/services/:id/image", serviceHandler.UploadServiceImage)

	return r, storage
}

// setupAppointmentRouter sets up routes for appointment handler tests.
func setupAppointmentRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	appointmentHandler := &AppointmentHandler{DB: db}

	api := r.Group("/api")

	client := api.Group("")
	client.Use(middleware.AuthMiddleware())
	client.Use(middleware.ClientMiddleware())
	client.GET("/my/appointments", appointmentHandler.MyAppointments)
	client.POST("/my/appointments", appointmentHandler.CreateMyAppointment)
	client.POST("/my/appointments/:id/cancel", appointmentHandler.CancelMyAppointment)

	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/appointments", appointmentHandler.ListAppointments)
	staff.GET("/appointments/:id", appointmentHandler.GetAppointment)
	staff.POST("/appointments", appointmentHandler.CreateAppointment)
	staff.PUT("/appointments/:id", appointmentHandler.UpdateAppointment)

	return r
}

// setupLoyaltyRouter sets up routes for loyalty handler tests.
func setupLoyaltyRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	loyaltyHandler := &LoyaltyHandler{DB: db}

	api := r.Group("/api")

	client := api.Group("")
	client.Use(middleware.AuthMiddleware())
	client.Use(middleware.ClientMiddleware())
	client.GET("/loyalty/points", loyaltyHandler.MyPoints)
	client.GET("/loyalty/history", loyaltyHandler.MyHistory)
	client.POST("/loyalty/redeem", loyaltyHandler.Redeem)
	client.GET("/loyalty/levels", loyaltyHandler.Levels)

	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.POST("/loyalty/add", loyaltyHandler.AddPoints)
	staff.GET("/clients/:id/loyalty", loyaltyHandler.ClientHistory)

	return r
}

// setupInvoiceRouter sets up routes for invoice handler tests.
func setupInvoiceRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	invoiceHandler := &InvoiceHandler{DB: db}

	api := r.Group("/api")

	client := api.Group("")
	client.Use(middleware.AuthMiddleware())
	client.Use(middleware.ClientMiddleware())
	client.GET("/my/invoices", invoiceHandler.MyInvoices)

	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/invoices", invoiceHandler.ListInvoices)
	staff.GET("/invoices/:id", invoiceHandler.GetInvoice)
	staff.POST("/invoices/:id/resend", invoiceHandler.ResendInvoice)

	return r
}

// setupSettingsRouter sets up routes for settings handler tests.
func setupSettingsRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	settingsHandler := &SettingsHandler{DB: db}

	api := r.Group("/api")
	api.GET("/settings/public", settingsHandler.GetPublicSettings)

	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/settings", settingsHandler.GetSettings)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.PUT("/settings", settingsHandler.UpdateSettings)

	return r
}

// setupStatsRouter sets up routes for stats handler tests.
func setupStatsRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	statsHandler := &StatsHandler{DB: db}

	api := r.Group("/api")
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	staff.GET("/stats", statsHandler.Dashboard)

	return r
}

// ==================== Request Helpers ====================

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authRequest creates an HTTP request with JSON body and Authorization header.
func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartRequest creates a multipart form request with the given fields and
// file uploads. files maps form field names to filenames; dummy data is used.
func multipartRequest(method, url string, fields map[string]string, files map[string]string, token string) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, val := range fields {
		_ = writer.WriteField(key, val)
	}

	for fieldName, filename := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldName, filename))
		h.Set("Content-Type", "image/jpeg")

		part, err := writer.CreatePart(h)
		if err != nil {
			panic("failed to create multipart file part: " + err.Error())
		}
		part.Write([]byte("fake image data"))
	}

	writer.Close()

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// parseResponseArray reads the response body into a slice of maps.
func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

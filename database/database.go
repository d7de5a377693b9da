package database

import (
	"fmt"
	"log"
	"os"

	"ferneynails-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=ferneynails port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.Client{},
		&models.Employee{},
		&models.Service{},
		&models.Appointment{},
		&models.Invoice{},
		&models.PointsHistory{},
		&models.Settings{},
		&models.ReminderLog{},
	)
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@ferneynails.fr"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existing models.Employee
	result := db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Employee{
		FirstName:  "Admin",
		LastName:   "Ferney Nails",
		Email:      adminEmail,
		Password:   string(hashedPassword),
		AppRole:    models.RoleAdmin,
		Speciality: models.SpecialityBoth,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

// CreateDefaultSettings seeds the singleton settings row on first boot.
func CreateDefaultSettings(db *gorm.DB) error {
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count > 0 {
		return nil
	}

	settings := models.Settings{
		SalonName: "Ferney Nails",
		Address:   "Ferney-Voltaire, France",
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

	if err := db.Create(&settings).Error; err != nil {
		return err
	}

	log.Println("Default settings created")
	return nil
}

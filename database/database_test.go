package database

import (
	"os"
	"testing"

	"ferneynails-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
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
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestCreateDefaultAdminNew(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "testadmin@test.com")
	os.Setenv("ADMIN_PASSWORD", "testpassword123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var employee models.Employee
	if err := db.Where("email = ?", "testadmin@test.com").First(&employee).Error; err != nil {
		t.Fatal("admin employee not created")
	}
	if employee.AppRole != models.RoleAdmin {
		t.Errorf("expected role '%s', got '%s'", models.RoleAdmin, employee.AppRole)
	}
}

func TestCreateDefaultAdminAlreadyExists(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "existing@test.com")
	os.Setenv("ADMIN_PASSWORD", "password123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	// Create admin first time
	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	// Second call should skip (no error)
	err = CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.Employee{}).Where("email = ?", "existing@test.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}

func TestCreateDefaultSettingsNew(t *testing.T) {
	db := setupTestDB(t)

	err := CreateDefaultSettings(db)
	if err != nil {
		t.Fatal(err)
	}

	var settings models.Settings
	if err := db.First(&settings).Error; err != nil {
		t.Fatal("settings not created")
	}
	if settings.SalonName != "Ferney Nails" {
		t.Errorf("expected 'Ferney Nails', got '%s'", settings.SalonName)
	}
	if settings.Loyalty.PointsPerEuro != 1 {
		t.Errorf("expected 1 point per euro, got %v", settings.Loyalty.PointsPerEuro)
	}
	if len(settings.Loyalty.Levels) != 3 {
		t.Errorf("expected 3 loyalty levels, got %d", len(settings.Loyalty.Levels))
	}
}

func TestCreateDefaultSettingsAlreadyExists(t *testing.T) {
	db := setupTestDB(t)

	if err := CreateDefaultSettings(db); err != nil {
		t.Fatal(err)
	}

	// Second call should skip
	if err := CreateDefaultSettings(db); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 settings row, got %d", count)
	}
}

package routes

import (
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"ferneynails-backend/models"
	"ferneynails-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mockStorage struct{}

func (m *mockStorage) UploadServiceImage(file multipart.File, filename, contentType string) (string, error) {
	return "https://storage.googleapis.com/test-bucket/services/test.jpg", nil
}

func (m *mockStorage) DeleteFile(objectPath string) error { return nil }

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-for-routes")
}

func setupTestRouter(t *testing.T) *gin.Engine {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.Exec(`CREATE TABLE IF NOT EXISTS "services" (
		"id" TEXT PRIMARY KEY,
		"name" TEXT NOT NULL,
		"category" TEXT NOT NULL,
		"technique" TEXT,
		"duration" INTEGER NOT NULL,
		"price" REAL NOT NULL,
		"description" TEXT,
		"image_url" TEXT,
		"is_active" BOOLEAN DEFAULT true,
		"created_at" DATETIME,
		"updated_at" DATETIME,
		"deleted_at" DATETIME
	)`).Error; err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	SetupRoutes(r, db, &mockStorage{})
	return r
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPublicServicesRoute(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/services", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for public services list, got %d", w.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestStaffRouteBlocksClient(t *testing.T) {
	r := setupTestRouter(t)

	token, err := utils.GenerateToken(uuid.New(), "client@test.com", "client")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for client on staff route, got %d", w.Code)
	}
}

func TestAdminRouteBlocksEmployee(t *testing.T) {
	r := setupTestRouter(t)

	token, err := utils.GenerateToken(uuid.New(), "employee@test.com", models.RoleEmployee)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("DELETE", "/api/admin/services/"+uuid.New().String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for employee on admin route, got %d", w.Code)
	}
}

func TestClientRouteBlocksStaff(t *testing.T) {
	r := setupTestRouter(t)

	token, err := utils.GenerateToken(uuid.New(), "employee@test.com", models.RoleEmployee)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/loyalty/points", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for staff on client route, got %d", w.Code)
	}
}

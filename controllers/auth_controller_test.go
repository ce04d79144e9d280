package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	config.SetConfig(&config.Config{GoEnv: "test", JWTSecret: "test-secret"})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&models.StaffAccount{}, &models.LoginAttempt{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	services.InitAuthService(db, "test-secret")

	router := gin.New()
	router.POST("/api/v1/auth/login", Login)
	router.GET("/api/v1/admin/lockouts", LockoutStatus)
	return router, db
}

func seedTestAccount(t *testing.T, db *gorm.DB, email, password, role string) {
	hash, err := services.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	account := models.StaffAccount{Name: "Test User", Email: email, PasswordHash: hash, Role: role}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, db := setupAuthTestRouter(t)
	seedTestAccount(t, db, "admin@cafe.local", "correct horse", "admin")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "admin@cafe.local",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/admin"`)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "admin@cafe.local",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	// Binding rejects a malformed email before the service is touched.
	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "not-an-email",
		"password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestLoginEndpointLockout(t *testing.T) {
	router, db := setupAuthTestRouter(t)
	seedTestAccount(t, db, "admin@cafe.local", "correct horse", "admin")

	for i := 0; i < services.MaxFailedAttempts; i++ {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", gin.H{
			"email":    "admin@cafe.local",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "admin@cafe.local",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "LOCKED")
}

func TestLockoutStatusEndpoint(t *testing.T) {
	router, _ := setupAuthTestRouter(t)

	assert.NoError(t, services.GetAuthService().RecordAttempt(
		"staff@cafe.local", false, models.AttemptTypeStaff, nil))

	w := doJSON(router, http.MethodGet, "/api/v1/admin/lockouts?email=staff@cafe.local&type=staff", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"locked":false`)
	assert.Contains(t, w.Body.String(), `"failed_count":1`)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/lockouts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/lockouts?email=x@y.z&type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

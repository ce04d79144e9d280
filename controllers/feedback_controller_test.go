package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupFeedbackTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.SetConfig(&config.Config{GoEnv: "test", JWTSecret: "test-secret"})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.CustomerFeedback{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)

	router := gin.New()
	router.POST("/api/v1/feedback", SubmitFeedback)
	router.GET("/api/v1/admin/feedback", ListFeedback)
	return router
}

func TestSubmitFeedbackEndpoint(t *testing.T) {
	router := setupFeedbackTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/feedback", gin.H{
		"rating":   5,
		"comment":  "Great service",
		"terminal": "kiosk-1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"rating":5`)

	tests := []struct {
		name   string
		rating interface{}
	}{
		{"rating too low", 0},
		{"rating too high", 6},
		{"rating missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := gin.H{"comment": "x"}
			if tt.rating != nil {
				body["rating"] = tt.rating
			}
			w := doJSON(router, http.MethodPost, "/api/v1/feedback", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w = doJSON(router, http.MethodGet, "/api/v1/admin/feedback", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Great service")
}

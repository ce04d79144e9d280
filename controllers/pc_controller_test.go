package controllers

import (
	"encoding/json"
	"fmt"
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

func setupPCTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.SetConfig(&config.Config{GoEnv: "test", JWTSecret: "test-secret"})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&models.PC{}, &models.Session{}, &models.DetectedIP{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	services.InitPCService(db, services.InitHub())
	services.SetIPEchoClient(nil)

	router := gin.New()
	router.GET("/api/v1/gate", Gate)
	router.POST("/api/v1/gate/request", RequestPCAccess)
	admin := router.Group("/api/v1/admin")
	admin.GET("/pcs", ListPCs)
	admin.POST("/pcs", CreatePC)
	admin.POST("/pcs/:id/grant", GrantAccess)
	admin.POST("/pcs/:id/deny", DenyAccess)
	admin.POST("/pcs/:id/end", EndSession)
	admin.POST("/pcs/:id/kick", KickClient)
	admin.POST("/pcs/:id/maintenance", SetMaintenance)
	admin.POST("/pcs/:id/restore", RestoreFromMaintenance)
	admin.GET("/detected-ips", ListDetectedIPs)
	admin.POST("/detected-ips/assign", AssignIPToPC)
	admin.DELETE("/detected-ips/:id", DeleteDetectedIP)
	return router
}

func createTestPC(t *testing.T, router *gin.Engine, number string) uint {
	w := doJSON(router, http.MethodPost, "/api/v1/admin/pcs", gin.H{"pc_number": number})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create PC: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Data.ID
}

func TestGateQuarantinesUnknownIP(t *testing.T) {
	router := setupPCTestRouter(t)

	// httptest requests arrive from 192.0.2.1, which is bound to nothing.
	w := doJSON(router, http.MethodGet, "/api/v1/gate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"registered":false`)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/detected-ips", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "192.0.2.1")
	assert.Contains(t, w.Body.String(), `"status":"unregistered"`)
}

func TestGateRecognizesBoundIP(t *testing.T) {
	router := setupPCTestRouter(t)
	pcID := createTestPC(t, router, "PC-01")

	// First visit quarantines the IP; the admin then binds it.
	w := doJSON(router, http.MethodGet, "/api/v1/gate", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	detected, err := services.GetPCService().ListDetectedIPs()
	assert.NoError(t, err)
	assert.Len(t, detected, 1)

	w = doJSON(router, http.MethodPost, "/api/v1/admin/detected-ips/assign", gin.H{
		"detected_id": detected[0].ID,
		"pc_id":       pcID,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/gate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"registered":true`)
	assert.Contains(t, w.Body.String(), `"pc_number":"PC-01"`)
}

func TestAccessRequestFlowEndpoints(t *testing.T) {
	router := setupPCTestRouter(t)
	pcID := createTestPC(t, router, "PC-01")

	w := doJSON(router, http.MethodPost, "/api/v1/gate/request", gin.H{"pc_id": pcID})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Data.Status)

	// A second request while one is open maps to 409.
	w = doJSON(router, http.MethodPost, "/api/v1/gate/request", gin.H{"pc_id": pcID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/grant", pcID),
		gin.H{"session_id": resp.Data.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/pcs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"online"`)

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/kick", pcID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/pcs", nil)
	assert.Contains(t, w.Body.String(), `"status":"offline"`)

	// Nothing left to end.
	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/end", pcID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDenyAccessEndpoint(t *testing.T) {
	router := setupPCTestRouter(t)
	pcID := createTestPC(t, router, "PC-01")

	w := doJSON(router, http.MethodPost, "/api/v1/gate/request", gin.H{"pc_id": pcID})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/deny", pcID),
		gin.H{"session_id": resp.Data.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	var session models.Session
	assert.NoError(t, config.GetDB().First(&session, resp.Data.ID).Error)
	assert.Equal(t, models.SessionStatusRejected, session.Status)
}

func TestMaintenanceEndpoints(t *testing.T) {
	router := setupPCTestRouter(t)
	pcID := createTestPC(t, router, "PC-01")

	w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/maintenance", pcID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/gate/request", gin.H{"pc_id": pcID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/admin/pcs/%d/restore", pcID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/gate/request", gin.H{"pc_id": pcID})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDeleteDetectedIPEndpoint(t *testing.T) {
	router := setupPCTestRouter(t)

	detected, err := services.GetPCService().LogDetectedIP("10.0.0.9")
	assert.NoError(t, err)

	w := doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/detected-ips/%d", detected.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/detected-ips/%d", detected.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

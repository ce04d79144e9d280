package controllers

import (
	"io"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/services"
)

// clientIP resolves the caller's IP for the kiosk gate. The request's
// own address wins; when that is loopback or unparseable (kiosk behind
// a local proxy), the external echo service is consulted as a fallback.
func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	parsed := net.ParseIP(ip)
	if parsed != nil && !parsed.IsLoopback() {
		return ip
	}

	if echo := services.GetIPEchoClient(); echo != nil {
		if detected := echo.DetectClientIP(c.Request.Context()); detected != nil {
			return *detected
		}
	}
	return ip
}

// Gate handles GET /api/v1/gate - the kiosk boot handshake. A known IP
// returns its bound PC; an unknown one is logged to the quarantine
// table for admin triage.
func Gate(c *gin.Context) {
	ip := clientIP(c)
	if ip == "" {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"ip":         nil,
				"registered": false,
			},
		})
		return
	}

	pc, err := services.GetPCService().CheckIPExists(ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if pc == nil {
		if _, err := services.GetPCService().LogDetectedIP(ip); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"ip":         ip,
				"registered": false,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"ip":         ip,
			"registered": true,
			"pc":         pc,
		},
	})
}

// RequestAccessRequest represents the request body for a kiosk access request
type RequestAccessRequest struct {
	PCID uint `json:"pc_id" binding:"required"`
}

// RequestPCAccess handles POST /api/v1/gate/request - a kiosk asks for a
// session on a terminal
func RequestPCAccess(c *gin.Context) {
	var req RequestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	ip := clientIP(c)
	session, err := services.GetPCService().RequestAccess(req.PCID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    session,
	})
}

// ListPCs handles GET /api/v1/admin/pcs
func ListPCs(c *gin.Context) {
	pcs, err := services.GetPCService().ListPCs()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pcs,
	})
}

// CreatePCRequest represents the request body for registering a terminal
type CreatePCRequest struct {
	PCNumber string `json:"pc_number" binding:"required"`
}

// CreatePC handles POST /api/v1/admin/pcs
func CreatePC(c *gin.Context) {
	var req CreatePCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	pc, err := services.GetPCService().CreatePC(req.PCNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    pc,
	})
}

// SessionActionRequest carries the session a grant/deny acts on
type SessionActionRequest struct {
	SessionID uint `json:"session_id" binding:"required"`
}

// GrantAccess handles POST /api/v1/admin/pcs/:id/grant
func GrantAccess(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := services.GetPCService().GrantAccess(id, req.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Access granted",
	})
}

// DenyAccess handles POST /api/v1/admin/pcs/:id/deny
func DenyAccess(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := services.GetPCService().DenyAccess(id, req.SessionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Access denied",
	})
}

// EndSession handles POST /api/v1/admin/pcs/:id/end
func EndSession(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetPCService().EndSession(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session ended",
	})
}

// KickClient handles POST /api/v1/admin/pcs/:id/kick
func KickClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetPCService().KickClient(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Client kicked",
	})
}

// SetMaintenance handles POST /api/v1/admin/pcs/:id/maintenance
func SetMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetPCService().SetMaintenance(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PC set to maintenance",
	})
}

// RestoreFromMaintenance handles POST /api/v1/admin/pcs/:id/restore
func RestoreFromMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetPCService().RestoreFromMaintenance(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PC restored",
	})
}

// ListDetectedIPs handles GET /api/v1/admin/detected-ips
func ListDetectedIPs(c *gin.Context) {
	detected, err := services.GetPCService().ListDetectedIPs()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detected,
	})
}

// AssignIPRequest represents the request body for binding a detected IP
type AssignIPRequest struct {
	DetectedID uint `json:"detected_id" binding:"required"`
	PCID       uint `json:"pc_id" binding:"required"`
}

// AssignIPToPC handles POST /api/v1/admin/detected-ips/assign
func AssignIPToPC(c *gin.Context) {
	var req AssignIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := services.GetPCService().AssignIPToPC(req.DetectedID, req.PCID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "IP assigned",
	})
}

// DeleteDetectedIP handles DELETE /api/v1/admin/detected-ips/:id
func DeleteDetectedIP(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetPCService().DeleteDetectedIP(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Detected IP deleted",
	})
}

// StreamEvents handles GET /api/v1/admin/events - an SSE stream of
// pcs/sessions/detected_ips change events, so the admin panel sees
// terminal state without polling.
func StreamEvents(c *gin.Context) {
	hub := services.GetHub()
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAVAILABLE",
				"message": "Event stream is not enabled",
			},
		})
		return
	}

	events, unsubscribe := hub.Subscribe(16)
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case evt, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(evt.Table, evt)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

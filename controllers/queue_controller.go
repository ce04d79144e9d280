package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/services"
)

// GetQueue handles GET /api/v1/queue - the customer-facing queue board.
// Clients poll this endpoint; refresh_after_seconds tells them how often,
// keeping order-view staleness bounded without push notifications.
func GetQueue(c *gin.Context) {
	orders, err := services.GetOrderService().ActiveOrders()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"entries":               services.BuildQueue(orders),
			"refresh_after_seconds": config.GetConfig().QueuePollSeconds,
		},
	})
}

// GetKitchenBoard handles GET /api/v1/kitchen - the kitchen-staff board
// with orders bucketed by status and per-line display prices
func GetKitchenBoard(c *gin.Context) {
	orders, err := services.GetOrderService().ActiveOrders()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"board":                 services.BuildKitchenBoard(orders),
			"refresh_after_seconds": config.GetConfig().QueuePollSeconds,
		},
	})
}

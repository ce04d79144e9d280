package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/controllers"
	"github.com/kapehan/kiosk-pos-api/middleware"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Kiosk POS API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
		&models.InventoryItem{},
		&models.StockAdjustment{},
		&models.PC{},
		&models.Session{},
		&models.DetectedIP{},
		&models.StaffAccount{},
		&models.LoginAttempt{},
		&models.CustomerFeedback{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize domain services
	services.InitOrderService(db)
	services.InitInventoryService(db)
	services.InitAuthService(db, cfg.JWTSecret)
	services.InitIPEchoClient(cfg.IPEchoURL)
	hub := services.InitHub()
	services.InitPCService(db, hub)

	// Photo storage is optional: the API runs without it, uploads are
	// rejected with UNAVAILABLE until a bucket is configured.
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitPhotoService(s3Service, services.PassthroughCompressor)
		log.Println("Photo storage initialized")
	} else {
		log.Println("AWS_S3_BUCKET not set, photo uploads disabled")
	}

	// Seed the initial admin account if configured and absent
	if err := seedAdminAccount(cfg); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default())

	registerRoutes(router)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// registerRoutes wires the HTTP surface. Kiosk and queue endpoints are
// public; staff endpoints accept admin or staff tokens; everything under
// /admin requires an admin token.
func registerRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Public: login, kiosk menu, queue board, feedback, kiosk gate
		v1.POST("/auth/login", controllers.Login)
		v1.GET("/menu", controllers.ListMenu)
		v1.GET("/queue", controllers.GetQueue)
		v1.POST("/feedback", controllers.SubmitFeedback)
		v1.GET("/gate", controllers.Gate)
		v1.POST("/gate/request", controllers.RequestPCAccess)
		v1.POST("/orders", controllers.CreateOrder)

		// Staff: kitchen board and order status transitions
		staff := v1.Group("", middleware.RequireRole("admin", "staff"))
		{
			staff.GET("/kitchen", controllers.GetKitchenBoard)
			staff.GET("/orders", controllers.ListOrders)
			staff.GET("/orders/:id", controllers.GetOrder)
			staff.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
		}

		// Admin panel
		admin := v1.Group("/admin", middleware.RequireRole("admin"))
		{
			admin.GET("/menu", controllers.AdminListMenu)
			admin.POST("/menu", controllers.CreateMenuItem)
			admin.PUT("/menu/:id", controllers.UpdateMenuItem)
			admin.DELETE("/menu/:id", controllers.DeleteMenuItem)
			admin.POST("/menu/:id/photo", controllers.UploadMenuPhoto)

			admin.DELETE("/orders/:id", controllers.DeleteOrder)

			admin.GET("/inventory", controllers.ListInventory)
			admin.POST("/inventory", controllers.CreateInventoryItem)
			admin.GET("/inventory/export", controllers.ExportInventoryCSV)
			admin.POST("/inventory/import", controllers.ImportInventoryCSV)
			admin.PUT("/inventory/:id", controllers.UpdateInventoryItem)
			admin.DELETE("/inventory/:id", controllers.DeleteInventoryItem)
			admin.POST("/inventory/:id/adjust", controllers.AdjustStock)
			admin.GET("/inventory/:id/adjustments", controllers.ListStockAdjustments)

			admin.GET("/pcs", controllers.ListPCs)
			admin.POST("/pcs", controllers.CreatePC)
			admin.POST("/pcs/:id/grant", controllers.GrantAccess)
			admin.POST("/pcs/:id/deny", controllers.DenyAccess)
			admin.POST("/pcs/:id/end", controllers.EndSession)
			admin.POST("/pcs/:id/kick", controllers.KickClient)
			admin.POST("/pcs/:id/maintenance", controllers.SetMaintenance)
			admin.POST("/pcs/:id/restore", controllers.RestoreFromMaintenance)

			admin.GET("/detected-ips", controllers.ListDetectedIPs)
			admin.POST("/detected-ips/assign", controllers.AssignIPToPC)
			admin.DELETE("/detected-ips/:id", controllers.DeleteDetectedIP)

			admin.GET("/events", controllers.StreamEvents)
			admin.GET("/lockouts", controllers.LockoutStatus)
			admin.GET("/feedback", controllers.ListFeedback)
		}
	}
}

// seedAdminAccount creates the bootstrap admin from ADMIN_EMAIL and
// ADMIN_PASSWORD when the credential store has no admin yet.
func seedAdminAccount(cfg *config.Config) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.StaffAccount{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}
	account := models.StaffAccount{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         "admin",
	}
	if err := db.Create(&account).Error; err != nil {
		return err
	}
	log.Printf("Seeded admin account %s", email)
	return nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Kiosk POS API is running",
	})
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drishyascan/a11y-scanner/internal/api"
	"github.com/drishyascan/a11y-scanner/internal/db"
	"github.com/drishyascan/a11y-scanner/internal/middleware"
	"github.com/drishyascan/a11y-scanner/internal/notify"
	"github.com/drishyascan/a11y-scanner/internal/scanner"
	"github.com/drishyascan/a11y-scanner/internal/scheduler"
)

// Config holds application configuration
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:            port,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

func main() {
	// Initialize configuration
	config := NewConfig()

	// Initialize database
	log.Println("Initializing database...")
	dbConn, err := db.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully")

	// Initialize scanner service
	log.Println("Initializing scanner service...")
	webhook := notify.NewWebhook(10 * time.Second)
	scannerService := scanner.NewService(dbConn, nil, webhook, nil)
	if err := scannerService.Start(); err != nil {
		log.Fatalf("Failed to start scanner service: %v", err)
	}
	log.Println("Scanner service started successfully")

	// Initialize scheduler
	schedulerService := scheduler.NewService(dbConn, scannerService)
	if err := schedulerService.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Add middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "a11y-scanner",
		})
	})

	// Authentication endpoint
	r.POST("/auth/login", api.LoginHandler(dbConn))

	// Protected routes
	v1 := r.Group("/v1")
	v1.Use(middleware.JWTRequired())
	{
		v1.POST("/scans", api.PostScanHandler(dbConn, scannerService))
		v1.GET("/scans", api.ListScansHandler(dbConn))
		v1.GET("/scans/latest", api.LatestScanHandler(dbConn))
		v1.GET("/scans/:id", api.GetScanHandler(dbConn))
		v1.POST("/scans/:id/rescan", api.RescanHandler(dbConn, scannerService))
		v1.POST("/scans/:id/cancel", api.CancelScanHandler(dbConn))
		v1.DELETE("/scans/:id", api.DeleteScanHandler(dbConn))

		v1.GET("/issues/scan/:id", api.ListIssuesHandler(dbConn))
		v1.GET("/issues/scan/:id/severity/:severity", api.ListIssuesHandler(dbConn))
		v1.GET("/issues/scan/:id/type/:category", api.ListIssuesHandler(dbConn))
		v1.GET("/issues/scan/:id/counts/severity", api.SeverityCountsHandler(dbConn))
		v1.GET("/issues/scan/:id/counts/type", api.CategoryCountsHandler(dbConn))

		v1.GET("/reports/scan/:id/summary", api.ScanSummaryHandler(dbConn))
		v1.GET("/reports/scan/:id/issues", api.IssueDetailsHandler(dbConn))
		v1.GET("/reports/trend", api.ScoreTrendHandler(dbConn))
		v1.GET("/reports/compare", api.CompareScansHandler(dbConn))
		v1.GET("/reports/dashboard", api.DashboardHandler(dbConn))

		v1.POST("/websites", api.PostWebsiteHandler(dbConn))
		v1.GET("/websites", api.ListWebsitesHandler(dbConn))
		v1.PUT("/websites/:id/status", api.UpdateWebsiteStatusHandler(dbConn))
		v1.DELETE("/websites/:id", api.DeleteWebsiteHandler(dbConn))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create shutdown context
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	// Shutdown server gracefully
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop background services gracefully
	if err := schedulerService.Stop(); err != nil {
		log.Printf("Failed to stop scheduler: %v", err)
	}
	if err := scannerService.Stop(); err != nil {
		log.Printf("Failed to stop scanner service: %v", err)
	}

	log.Println("Server exited")
}

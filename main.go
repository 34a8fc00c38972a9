package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pawphysio/auth"
	"pawphysio/cli"
	"pawphysio/config"
	"pawphysio/core"
	"pawphysio/database"
	"pawphysio/handlers"
	"pawphysio/mailer"
	"pawphysio/middleware"
	"pawphysio/models"
	"pawphysio/service"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Check if CLI mode is requested
	if config.Settings.CLIMode {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		mainCLI()
		return
	}

	// Configure log format
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("System starting up...")

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auth requires a secret; refuse to mint forgeable tokens
	authenticator, err := auth.New(config.Settings.JWTSecret, config.Settings.TokenTTLHours, config.Settings.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	// Start user-error capture pipeline
	core.InitCapture(database.DB)
	core.CaptureInstance.Start()

	// System error logger writes to the error_logs table
	core.InitSystemLogger(database.DB)

	// Transactional mail
	mail := mailer.New(database.DB)

	// Initialize services
	service.InitServices(database.DB, authenticator, mail)

	// Seed the superadmin account on first start
	if config.Settings.AdminEmail != "" {
		if err := service.GlobalServices.Profile.EnsureSeedAdmin(config.Settings.AdminEmail, config.Settings.AdminPassword); err != nil {
			log.Printf("Warning: failed to seed admin account: %v", err)
		}
	}

	// Persist the default notification language so it survives config changes
	if err := database.SetSetting(database.SettingDefaultLanguage, config.Settings.DefaultLanguage); err != nil {
		log.Printf("Warning: failed to store default language: %v", err)
	}

	// Start goroutine monitor
	go monitorGoroutines()

	// Set Gin mode
	if config.Settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()

	// Disable Gin color logs to avoid ANSI issues on Windows terminals
	gin.DisableConsoleColor()

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// API routes
	api := r.Group("/api")
	{
		// Public routes
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)
		api.POST("/auth/check-password", handlers.CheckPassword)
		api.GET("/services", handlers.ListServices)
		api.GET("/install-hint", handlers.InstallHint)
		api.GET("/health", handlers.HealthCheck)

		// Authenticated client routes
		authed := api.Group("")
		authed.Use(middleware.RequireAuth(authenticator))
		{
			authed.GET("/profile", handlers.GetProfile)
			authed.PUT("/profile", handlers.UpdateProfile)

			authed.GET("/dogs", handlers.ListDogs)
			authed.POST("/dogs", handlers.CreateDog)
			authed.PUT("/dogs/:id", handlers.UpdateDog)
			authed.DELETE("/dogs/:id", handlers.DeleteDog)

			authed.GET("/bookings", handlers.ListBookings)
			authed.POST("/bookings", handlers.CreateBooking)
			authed.POST("/bookings/:id/cancel", handlers.CancelBooking)

			// User error capture (any authenticated role)
			authed.POST("/user-errors", handlers.CaptureUserError)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(authenticator), middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/bookings", handlers.ListBookingsAdmin)
			admin.PUT("/bookings/:id/status", handlers.SetBookingStatus)

			admin.GET("/services", handlers.ListServicesAdmin)
			admin.POST("/services", handlers.CreateService)
			admin.PUT("/services/:id", handlers.UpdateService)
			admin.DELETE("/services/:id", handlers.DeleteService)

			admin.GET("/user-errors", handlers.ListUserErrors)
			admin.PUT("/user-errors/:id/review", handlers.ReviewUserError)
			admin.DELETE("/user-errors/:id", handlers.DeleteUserError)

			admin.GET("/email-logs", handlers.ListEmailLogs)
			admin.GET("/email-logs/stats", handlers.EmailStats)
			admin.POST("/email-logs/:id/retry", handlers.RetryEmail)

			admin.GET("/metrics", handlers.GetMetrics)
			admin.GET("/metrics/prometheus", handlers.GetPrometheusMetrics)
		}

		// Superadmin routes
		super := api.Group("/admin")
		super.Use(middleware.RequireAuth(authenticator), middleware.RequireRole(models.RoleSuperAdmin))
		{
			super.GET("/profiles", handlers.ListProfiles)
			super.PUT("/profiles/:id/role", handlers.SetProfileRole)

			super.GET("/error-logs", handlers.ListErrorLogs)
			super.GET("/error-logs/export", handlers.ExportErrorLogs)
			super.DELETE("/error-logs/:id", handlers.DeleteErrorLog)
			super.DELETE("/error-logs", handlers.ClearErrorLogs)

			super.PUT("/settings/install-banner", handlers.SetInstallBanner)

			super.POST("/shutdown/generate-code", handlers.GenerateShutdownCode)
			super.POST("/shutdown/verify", handlers.VerifyAndShutdown)
		}
	}

	// Find an available port
	port := findAvailablePort(config.Settings.Port)
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	// Create HTTP server
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.LogFatal("System", "HTTP server failed", map[string]interface{}{"addr": addr, "error": err.Error()})
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Create shutdown channel and expose to handlers
	shutdownChan := make(chan bool, 1)
	handlers.SetShutdownChannel(shutdownChan)

	// Wait for OS interrupt or API-triggered shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Received interrupt signal")
	case <-shutdownChan:
		log.Println("Shutdown triggered via API")
	}

	log.Println("System shutting down...")

	// Drain and stop the capture pipeline
	core.CaptureInstance.Stop()

	// Close database connection
	if err := database.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}

// monitorGoroutines tracks goroutine count to prevent leaks
func monitorGoroutines() {
	ticker := time.NewTicker(time.Duration(config.Settings.GoroutineMonitorIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		count := runtime.NumGoroutine()
		if count > config.Settings.GoroutineWarnThreshold {
			log.Printf("WARNING: High goroutine count detected: %d", count)
			core.LogWarn("System", fmt.Sprintf("High goroutine count: %d", count))
		} else if config.Settings.LogLevel == "DEBUG" {
			log.Printf("Current goroutine count: %d", count)
		}
	}
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI() {
	// CLI mode skips DB load; acts as HTTP client
	log.SetFlags(log.Ldate | log.Ltime)

	cliConfig, err := cli.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading CLI config: %v\n", err)
		os.Exit(1)
	}

	// A --server flag overrides the configured default
	serverName := ""
	if config.Settings.CLIServer != "" && config.Settings.CLIServer != "http://localhost:8088" {
		serverName = "flag"
		if err := cliConfig.AddServer(serverName, config.Settings.CLIServer, "From --server flag"); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("PawPhysio CLI - Connecting...\n")

	// Create HTTP client CLI instance
	cliInstance, err := cli.NewCLIHttp(cliConfig, serverName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the PawPhysio server is running:")
		fmt.Println("     ./pawphysio")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./pawphysio --cli --server http://your-server:8088\n")
		os.Exit(1)
	}

	// Start CLI loop (readline handles Ctrl+C automatically)
	cliInstance.Start()
}

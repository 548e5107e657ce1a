package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vishubh-healthcare-server/internal/billing"
	"vishubh-healthcare-server/internal/config"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/internal/payments"
	"vishubh-healthcare-server/internal/routes"
	"vishubh-healthcare-server/internal/scheduling"
	"vishubh-healthcare-server/pkg/logging"
)

func main() {
	// Load environment variables; a missing .env is fine in production
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Domain services
	scheduler := scheduling.NewService(scheduling.NewGormStore(db), logger, bookingMetrics)
	gateway := payments.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger)
	paymentSvc := payments.NewService(payments.NewGormStore(db), gateway, logger, bookingMetrics)
	billingSvc := billing.NewService(billing.NewGormStore(db), billing.PDFRenderer{},
		cfg.ConsultationFee, logger, bookingMetrics)

	// Initialize Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, routes.Services{
		Scheduler: scheduler,
		Payments:  paymentSvc,
		Billing:   billingSvc,
	})

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

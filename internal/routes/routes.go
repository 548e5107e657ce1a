package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"vishubh-healthcare-server/internal/billing"
	"vishubh-healthcare-server/internal/config"
	"vishubh-healthcare-server/internal/handlers"
	"vishubh-healthcare-server/internal/middleware"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/payments"
	"vishubh-healthcare-server/internal/scheduling"
)

// Services bundles the domain services the HTTP layer exposes.
type Services struct {
	Scheduler *scheduling.Service
	Payments  *payments.Service
	Billing   *billing.Service
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, svcs Services) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, svcs.Scheduler, cfg.ConsultationFee)
	paymentHandler := handlers.NewPaymentHandler(svcs.Payments)
	invoiceHandler := handlers.NewInvoiceHandler(svcs.Billing)

	// Operational endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Verified doctors are visible to all authenticated users for booking
			userRoutes.GET("/doctors", userHandler.ListDoctors)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.ListUsers)
				adminRoutes.GET("/:id", userHandler.GetUser)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
				adminRoutes.PATCH("/:id/verify-doctor", userHandler.VerifyDoctor)
				adminRoutes.PATCH("/:id/verify-patient", userHandler.VerifyPatient)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.Book)
			appointmentRoutes.GET("", appointmentHandler.List)
			appointmentRoutes.GET("/slot", appointmentHandler.CheckSlot)
			appointmentRoutes.GET("/:id", appointmentHandler.Get)

			// Status changes; role checks beyond view access live in the handler
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.Reschedule)
			appointmentRoutes.PATCH("/:id/assign-doctor",
				middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.AssignDoctor)

			// Payment flow for an appointment
			appointmentRoutes.POST("/:id/payment/order", paymentHandler.CreateOrder)
			appointmentRoutes.POST("/:id/payment/confirm", paymentHandler.Confirm)
			appointmentRoutes.POST("/:id/payment/retry", paymentHandler.Retry)
			appointmentRoutes.POST("/:id/payment/refund",
				middleware.RoleAuthMiddleware(models.RoleAdmin), paymentHandler.Refund)

			// Invoice issuance is a staff action
			appointmentRoutes.POST("/:id/invoice",
				middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), invoiceHandler.Issue)
		}

		// Invoice retrieval
		invoiceRoutes := private.Group("/invoices")
		{
			invoiceRoutes.GET("/:id", invoiceHandler.Get)
			invoiceRoutes.GET("/:id/pdf", invoiceHandler.Download)
		}
	}
}

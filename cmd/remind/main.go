package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"vishubh-healthcare-server/internal/config"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/notify"
	"vishubh-healthcare-server/internal/observability/metrics"
	"vishubh-healthcare-server/internal/reminders"
	"vishubh-healthcare-server/pkg/logging"
)

// Sends appointment reminders for tomorrow's pending and confirmed
// appointments. Intended to run once a day from cron.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGrid.APIKey,
		FromEmail: cfg.SendGrid.FromEmail,
		FromName:  cfg.SendGrid.FromName,
	}, logger)
	if sender == nil {
		log.Fatal("SENDGRID_API_KEY is required to send reminders")
	}

	svc := reminders.NewService(reminders.NewGormStore(db), sender, logger,
		metrics.NewBookingMetrics(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := svc.Run(ctx, time.Now())
	if err != nil {
		log.Fatalf("Reminder run failed: %v", err)
	}
	logger.Info("reminder run finished",
		"total", stats.Total, "sent", stats.Sent, "failed", stats.Failed)
}
